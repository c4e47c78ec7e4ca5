// Package unit contains unit tests for individual components of the
// roomcast server, exercised through their exported API.
package unit

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/server"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := server.LoadConfig()
	req.NoError(err)

	req.Equal(":8080", cfg.Addr())
	req.Equal([]string{"http://localhost:8080"}, cfg.AllowedOrigins)
	req.Equal(int64(512), cfg.MaxMessageSize)
	req.Equal(5, cfg.RateLimit.Burst)
	req.Equal(time.Second, cfg.RateLimit.RefillInterval)
	req.Equal(10*time.Second, cfg.ShutdownTimeout)
	req.Empty(cfg.BannedWords)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("BANNED_WORDS", "badger,snake")

	cfg, err := server.LoadConfig()
	req.NoError(err)

	req.Equal(":9000", cfg.Addr())
	req.Equal([]string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	req.Equal(int64(1024), cfg.MaxMessageSize)
	req.Equal(10, cfg.RateLimit.Burst)
	req.Equal(2*time.Second, cfg.RateLimit.RefillInterval)
	req.Equal([]string{"badger", "snake"}, cfg.BannedWords)
}

func TestLoadConfig_SanitizesOutOfRangeValues(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "-1")
	t.Setenv("MAX_MESSAGE_SIZE", "0")
	t.Setenv("RATE_LIMIT_BURST", "-5")

	cfg, err := server.LoadConfig()
	req.NoError(err)

	defaults := server.NewConfig()
	req.Equal(defaults.Port, cfg.Port)
	req.Equal(defaults.MaxMessageSize, cfg.MaxMessageSize)
	req.Equal(defaults.RateLimit.Burst, cfg.RateLimit.Burst)
}

func TestConfig_SlogLevel(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		value string
		level slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"INFO", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := server.NewConfig()
		cfg.LogLevel = tt.value
		req.Equal(tt.level, cfg.SlogLevel(), "level %q", tt.value)
	}
}
