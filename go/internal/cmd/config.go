package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidroom/go/internal/config"
)

const defaultConfigPath = "config.yaml"

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig() (config.Config, error) {
	return config.Load(getEnv("BIDROOM_CONFIG", defaultConfigPath))
}

// setupLogging configures the global zerolog logger
func setupLogging(cfg config.LogConfig) {
	if cfg.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
