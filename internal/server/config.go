// Package server provides configuration helpers that define runtime
// defaults, validation, and rate-limiting parameters for the roomcast
// service.
package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST,default=5"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
}

// Config holds the server settings, populated from the environment.
type Config struct {
	Port            int      `env:"PORT,default=8080"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize  int64    `env:"MAX_MESSAGE_SIZE,default=512"`
	RateLimit       RateLimitConfig
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`

	// BannedWords overrides the built-in profanity list when set.
	BannedWords []string `env:"BANNED_WORDS"`
}

// LoadConfig reads the configuration from the environment, after loading an
// optional .env file, and clamps out-of-range values back to their
// defaults.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg.sanitize(), nil
}

// NewConfig returns a configuration populated with default values for all
// settings. Used by tests and as the baseline for sanitization.
func NewConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:8080"},
		MaxMessageSize: 512,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "INFO",
	}
}

func (c Config) sanitize() Config {
	defaults := NewConfig()
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaults.Port
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaults.RateLimit.Burst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = defaults.RateLimit.RefillInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return c
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SlogLevel maps the configured log level string onto a slog level,
// defaulting to info for unknown values.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
