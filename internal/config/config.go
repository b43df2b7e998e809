// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Reminder ReminderConfig
	// ImportFile is an optional .xlsx workbook with topics and words
	// loaded once at startup
	ImportFile string
	LogLevel   string
}

// TelegramConfig holds bot transport settings
type TelegramConfig struct {
	Token string
}

// DatabaseConfig holds storage settings. When URL is empty the
// application falls back to a local SQLite file at SQLitePath.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
}

// ReminderConfig holds inactivity reminder settings
type ReminderConfig struct {
	// InactivityMinutes is how long a user must be idle before a
	// reminder becomes due
	InactivityMinutes int
	// ScanIntervalMinutes is how often the scheduler scans for due users
	ScanIntervalMinutes int
}

// Load reads configuration from environment variables. A .env file is
// honored when present but is not required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: envOrDefault("SQLITE_PATH", "data/lingobot.db"),
		},
		Reminder: ReminderConfig{
			InactivityMinutes:   30,
			ScanIntervalMinutes: 1,
		},
		ImportFile: os.Getenv("IMPORT_FILE"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	cfg.Telegram.Token = token

	if v := os.Getenv("REMINDER_INACTIVITY_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_INACTIVITY_MINUTES: %q", v)
		}
		cfg.Reminder.InactivityMinutes = n
	}

	if v := os.Getenv("REMINDER_SCAN_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_SCAN_INTERVAL_MINUTES: %q", v)
		}
		cfg.Reminder.ScanIntervalMinutes = n
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
