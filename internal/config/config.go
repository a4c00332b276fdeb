package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"faceit-tracker/internal/constants"
	"faceit-tracker/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	FaceitAPIKey string
	PlayerIDs    []string
	DBPath       string
	OutputDir    string
	LogLevel     string

	// Timezone is the fixed reference location for period boundaries.
	Timezone string
	Location *time.Location

	TelegramBotToken string
	TelegramChatID   string

	// NotifyGraceWindow is the lookback applied when migrating legacy
	// notification state that carries no last-run timestamp.
	NotifyGraceWindow time.Duration
}

// Load reads the environment before the leveled application logger
// exists, so it logs through a bootstrap logger at the default level.
func Load() (*Config, error) {
	log := logger.New()
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		FaceitAPIKey:      getEnv("FACEIT_API_KEY", ""),
		PlayerIDs:         splitList(getEnv("FACEIT_PLAYERS", "")),
		DBPath:            getEnv("DB_PATH", "tracker.db"),
		OutputDir:         getEnv("OUTPUT_DIR", "public"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Timezone:          getEnv("TIMEZONE", "UTC"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
		NotifyGraceWindow: getDuration("NOTIFY_GRACE_WINDOW", constants.DefaultNotifyGraceWindow, log),
	}

	if cfg.FaceitAPIKey == "" {
		return nil, fmt.Errorf("FACEIT_API_KEY is required")
	}
	if len(cfg.PlayerIDs) == 0 {
		return nil, fmt.Errorf("FACEIT_PLAYERS is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	log.Info().
		Int("players", len(cfg.PlayerIDs)).
		Str("db_path", cfg.DBPath).
		Str("output_dir", cfg.OutputDir).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Timezone).
		Dur("notify_grace_window", cfg.NotifyGraceWindow).
		Bool("telegram_enabled", cfg.TelegramBotToken != "" && cfg.TelegramChatID != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, logger zerolog.Logger) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var Module = fx.Provide(Load)
