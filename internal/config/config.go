package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken string
	DatabaseURL   string
	LogLevel      string
	Port          string
	// SweepAt and PurgeAt are local HH:MM clock times for the daily
	// expiry-notification sweep and the retention purge.
	SweepAt string
	PurgeAt string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Port:     getEnvOrDefault("PORT", "8080"),
		SweepAt:  getEnvOrDefault("SWEEP_AT", "10:00"),
		PurgeAt:  getEnvOrDefault("PURGE_AT", "04:00"),
	}

	// Required environment variables
	if cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
