// Package config provides configuration management for formkeeper services.
package config

import (
	"fmt"
	"time"

	"github.com/solatis/formkeeper/internal/i18n"
	"github.com/solatis/formkeeper/internal/log"
	"github.com/solatis/formkeeper/internal/validate"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Evaluation EvaluationConfig
	Log        LogConfig
}

// ServerConfig holds configuration for the gRPC evaluation service.
type ServerConfig struct {
	Host            string
	Port            int
	RequestTimeout  time.Duration
	MaxMessageBytes int
}

// DatabaseConfig locates the question-set store.
type DatabaseConfig struct {
	URL string
}

// CacheConfig configures the optional Redis question-set cache.
// An empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// EvaluationConfig tunes the validators.
type EvaluationConfig struct {
	RegexTimeout time.Duration
	Locale       string
	Timezone     string
}

// Location resolves Timezone; empty means the process local zone.
func (c EvaluationConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            50061,
			RequestTimeout:  10 * time.Second,
			MaxMessageBytes: 4 << 20,
		},
		Cache: CacheConfig{
			TTL: 15 * time.Minute,
		},
		Evaluation: EvaluationConfig{
			RegexTimeout: validate.MaxRegexTimeout,
			Locale:       i18n.DefaultLanguage,
			Timezone:     "Europe/London",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks ranges and resolvable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.Server.RequestTimeout)
	}
	if c.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.Server.MaxMessageBytes)
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Evaluation.RegexTimeout <= 0 || c.Evaluation.RegexTimeout > validate.MaxRegexTimeout {
		return fmt.Errorf("regex_timeout must be in (0, %v], got %v", validate.MaxRegexTimeout, c.Evaluation.RegexTimeout)
	}
	if !i18n.Supported(c.Evaluation.Locale) {
		return fmt.Errorf("unsupported locale %q", c.Evaluation.Locale)
	}
	if _, err := c.Evaluation.Location(); err != nil {
		return err
	}
	if _, err := log.GetLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := log.GetFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}
