package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogBuffer is a thread-safe ring of the most recent log entries. It is an
// io.Writer so a zap JSON core can write into it directly.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	// Stats
	totalEntries   uint64
	droppedEntries uint64
}

// NewLogBuffer creates a new log buffer with the specified size
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Add adds a new log entry to the buffer, overwriting the oldest when full.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	lb.add(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.wrapped {
		lb.droppedEntries++
	}

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// Write decodes one or more zap JSON lines into entries.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lb.add(decodeEntry(line))
	}
	return len(p), nil
}

// Sync satisfies zapcore.WriteSyncer; there is nothing to flush.
func (lb *LogBuffer) Sync() error {
	return nil
}

func decodeEntry(line []byte) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{Timestamp: time.Now(), Level: "info", Message: string(line)}
	}

	entry := LogEntry{Timestamp: time.Now()}
	if v, ok := raw["time"].(string); ok {
		if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", v); err == nil {
			entry.Timestamp = ts
		}
	}
	entry.Level, _ = raw["level"].(string)
	entry.Logger, _ = raw["logger"].(string)
	entry.Message, _ = raw["msg"].(string)

	delete(raw, "time")
	delete(raw, "level")
	delete(raw, "logger")
	delete(raw, "msg")
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// A non-positive limit returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	startIndex := 0
	if lb.wrapped {
		count = lb.maxSize
		startIndex = lb.currentIndex
	}

	skip := 0
	if limit > 0 && limit < count {
		skip = count - limit
	}

	logs := make([]LogEntry, 0, count-skip)
	for i := skip; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(startIndex+i)%lb.maxSize])
	}
	return logs
}

// GetByLevel returns the newest entries at or above min, oldest first.
func (lb *LogBuffer) GetByLevel(min zapcore.Level, limit int) []LogEntry {
	all := lb.GetRecentLogs(0)
	filtered := make([]LogEntry, 0, len(all))
	for _, e := range all {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(e.Level))); err != nil {
			lvl = zapcore.InfoLevel
		}
		if lvl >= min {
			filtered = append(filtered, e)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// Clear drops every entry but keeps the counters.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ringBuffer = make([]LogEntry, lb.maxSize)
	lb.currentIndex = 0
	lb.wrapped = false
}

// GetStats returns buffer statistics
func (lb *LogBuffer) GetStats() (total, dropped uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.droppedEntries
}
