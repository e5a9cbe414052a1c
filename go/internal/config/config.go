package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when configuration values are out of range
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every runtime setting of the bidroom server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auction AuctionConfig `yaml:"auction"`
	Chat    ChatConfig    `yaml:"chat"`
	NATS    NATSConfig    `yaml:"nats"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuctionConfig holds countdown settings
type AuctionConfig struct {
	CountdownSec int           `yaml:"countdown_sec"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Countdown returns the quiet period as a duration
func (a AuctionConfig) Countdown() time.Duration {
	return time.Duration(a.CountdownSec) * time.Second
}

// ChatConfig holds chat room settings
type ChatConfig struct {
	MaxHistory int `yaml:"max_history"`
}

// NATSConfig holds the optional JetStream event mirror settings.
// An empty URL disables the mirror.
type NATSConfig struct {
	URL           string `yaml:"url"`
	StreamName    string `yaml:"stream_name"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Enabled reports whether events should be mirrored to NATS
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

// LogConfig holds logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auction: AuctionConfig{
			CountdownSec: 30,
			TickInterval: time.Second,
		},
		Chat: ChatConfig{
			MaxHistory: 50,
		},
		NATS: NATSConfig{
			StreamName:    "AUCTION_EVENTS",
			SubjectPrefix: "auction.events",
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// no file, defaults and env only
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Auction.CountdownSec = getEnvAsInt("AUCTION_COUNTDOWN_SEC", c.Auction.CountdownSec)
	if v := os.Getenv("AUCTION_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse AUCTION_TICK_INTERVAL: %w", err)
		}
		c.Auction.TickInterval = d
	}

	c.Chat.MaxHistory = getEnvAsInt("CHAT_MAX_HISTORY", c.Chat.MaxHistory)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.StreamName = getEnv("NATS_STREAM", c.NATS.StreamName)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	if v := os.Getenv("LOG_CONSOLE"); v != "" {
		console, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse LOG_CONSOLE: %w", err)
		}
		c.Log.Console = console
	}
	return nil
}

// Validate checks that every setting is usable
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server port is required", ErrInvalidConfig)
	}
	if c.Auction.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.Auction.TickInterval)
	}
	if c.Auction.Countdown() < c.Auction.TickInterval {
		return fmt.Errorf("%w: countdown %s is shorter than one tick", ErrInvalidConfig, c.Auction.Countdown())
	}
	if c.Chat.MaxHistory < 1 {
		return fmt.Errorf("%w: max history must be at least 1, got %d", ErrInvalidConfig, c.Chat.MaxHistory)
	}
	if c.NATS.Enabled() && (c.NATS.StreamName == "" || c.NATS.SubjectPrefix == "") {
		return fmt.Errorf("%w: nats stream and subject prefix are required", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
