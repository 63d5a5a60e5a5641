// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL         string `mapstructure:"base_url"`
	UserAgent       string `mapstructure:"user_agent"`
	RequestTimeout  int    `mapstructure:"request_timeout_ms"`
	PollInterval    int    `mapstructure:"poll_interval_ms"`
	MaxPollInterval int    `mapstructure:"max_poll_interval_ms"`
	OrdersLimit     int    `mapstructure:"orders_limit"`
	PriceMinutes    int    `mapstructure:"price_minutes"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
	LogFile         string `mapstructure:"log_file"`
	LogBufferSize   int    `mapstructure:"log_buffer_size"`
	ExportDir       string `mapstructure:"export_dir"`
	MetricsAddr     string `mapstructure:"metrics_addr"`
	DefaultPairID   int    `mapstructure:"default_pair_id"`
}

const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultUserAgent       = "pairdash"
	DefaultRequestTimeout  = 10000
	DefaultPollInterval    = 5000
	DefaultMaxPollInterval = 60000
	DefaultOrdersLimit     = 10
	DefaultPriceMinutes    = 180
	DefaultLogFile         = "logs/pairdash.log"
	DefaultLogBufferSize   = 500
	DefaultExportDir       = "exports"
)

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		RequestTimeout:  DefaultRequestTimeout,
		PollInterval:    DefaultPollInterval,
		MaxPollInterval: DefaultMaxPollInterval,
		OrdersLimit:     DefaultOrdersLimit,
		PriceMinutes:    DefaultPriceMinutes,
		LogFile:         DefaultLogFile,
		LogBufferSize:   DefaultLogBufferSize,
		ExportDir:       DefaultExportDir,
	}
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"base_url":             DefaultBaseURL,
		"user_agent":           DefaultUserAgent,
		"request_timeout_ms":   DefaultRequestTimeout,
		"poll_interval_ms":     DefaultPollInterval,
		"max_poll_interval_ms": DefaultMaxPollInterval,
		"orders_limit":         DefaultOrdersLimit,
		"price_minutes":        DefaultPriceMinutes,
		"log_file":             DefaultLogFile,
		"log_buffer_size":      DefaultLogBufferSize,
		"export_dir":           DefaultExportDir,
		"debug_logging":        false,
		"metrics_addr":         "",
		"default_pair_id":      0,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Every key above can be overridden as PAIRDASH_<KEY>
	v.SetEnvPrefix("PAIRDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	normalize(&cfg)

	return &cfg, validateConfig(&cfg)
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// Interval returns the delay between two settled refreshes.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// MaxInterval caps the delay after consecutive failed refreshes.
func (c *Config) MaxInterval() time.Duration {
	return time.Duration(c.MaxPollInterval) * time.Millisecond
}

func validateConfig(cfg *Config) error {
	if cfg.BaseURL == "" {
		return errors.New("missing base_url in configuration")
	}
	if err := validateURLWithCache(cfg.BaseURL, "http"); err != nil {
		return errors.New("invalid base_url protocol")
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.MaxPollInterval < cfg.PollInterval {
		return errors.New("max_poll_interval_ms must not be below poll_interval_ms")
	}
	if cfg.OrdersLimit <= 0 {
		return errors.New("invalid orders_limit")
	}
	if cfg.PriceMinutes < 0 {
		return errors.New("invalid price_minutes")
	}
	if cfg.LogBufferSize <= 0 {
		return errors.New("invalid log_buffer_size")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func normalize(cfg *Config) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.MetricsAddr = strings.TrimSpace(cfg.MetricsAddr)
}
