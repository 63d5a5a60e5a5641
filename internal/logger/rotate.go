package logger

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls the on-disk log file.
type RotationConfig struct {
	LogFile    string
	MaxSize    int  // megabytes
	MaxAge     int  // days
	MaxBackups int  // files
	Compress   bool // gzip rotated files
}

// DefaultRotationConfig keeps a week of logs in at most four files.
func DefaultRotationConfig(path string) RotationConfig {
	return RotationConfig{
		LogFile:    path,
		MaxSize:    20,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

// NewRotatingFile returns a size-rotated file writer. The caller closes it.
func NewRotatingFile(cfg RotationConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}
