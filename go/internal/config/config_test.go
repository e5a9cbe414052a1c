package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Auction.Countdown())
	assert.False(t, cfg.NATS.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  allowed_origins: ["https://bids.example.com"]
auction:
  countdown_sec: 10
  tick_interval: 500ms
chat:
  max_history: 20
nats:
  url: nats://localhost:4222
log:
  level: debug
  console: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://bids.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Auction.Countdown())
	assert.Equal(t, 500*time.Millisecond, cfg.Auction.TickInterval)
	assert.Equal(t, 20, cfg.Chat.MaxHistory)
	assert.True(t, cfg.NATS.Enabled())
	// unset keys keep their defaults
	assert.Equal(t, "AUCTION_EVENTS", cfg.NATS.StreamName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Console)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("PORT", "7000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AUCTION_COUNTDOWN_SEC", "45")
	t.Setenv("AUCTION_TICK_INTERVAL", "250ms")
	t.Setenv("CHAT_MAX_HISTORY", "5")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("NATS_SUBJECT_PREFIX", "room.events")
	t.Setenv("LOG_CONSOLE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.Auction.Countdown())
	assert.Equal(t, 250*time.Millisecond, cfg.Auction.TickInterval)
	assert.Equal(t, 5, cfg.Chat.MaxHistory)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
	assert.Equal(t, "room.events", cfg.NATS.SubjectPrefix)
	assert.False(t, cfg.Log.Console)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad_yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unterminated"))
		require.Error(t, err)
	})

	t.Run("bad_tick_interval", func(t *testing.T) {
		t.Setenv("AUCTION_TICK_INTERVAL", "soon")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("bad_log_console", func(t *testing.T) {
		t.Setenv("LOG_CONSOLE", "maybe")
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty_port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "zero_tick", mutate: func(c *Config) { c.Auction.TickInterval = 0 }},
		{name: "countdown_shorter_than_tick", mutate: func(c *Config) {
			c.Auction.CountdownSec = 1
			c.Auction.TickInterval = 2 * time.Second
		}},
		{name: "zero_history", mutate: func(c *Config) { c.Chat.MaxHistory = 0 }},
		{name: "nats_without_subject", mutate: func(c *Config) {
			c.NATS.URL = "nats://localhost:4222"
			c.NATS.SubjectPrefix = ""
		}},
	}

	require.NoError(t, Default().Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
