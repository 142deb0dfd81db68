package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"tris-bot/internal/constants"
)

type Config struct {
	TelegramToken string
	ScorePath     string
	TickInterval  time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		ScorePath:     getEnv("SCORE_PATH", "tris.log"),
		TickInterval:  constants.DefaultTickInterval,
	}

	if raw := getEnv("TICK_INTERVAL", ""); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TICK_INTERVAL %q: %w", raw, err)
		}
		cfg.TickInterval = interval
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	logger.Info().
		Str("score_path", cfg.ScorePath).
		Dur("tick_interval", cfg.TickInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
