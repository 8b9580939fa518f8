package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultScheduleURL = "http://school36.murmansk.su/izmeneniya-v-raspisanii/"

// Config is the bot's runtime configuration, assembled once at startup and
// passed into each component's constructor. Nothing mutates it afterwards.
type Config struct {
	Token         string
	CommandPrefix string
	DatabaseURL   string

	ScheduleURL          string
	DistributionInterval time.Duration

	ColorDefault int
	ColorError   int

	AdmissionURL      string
	SpreadsheetID     string
	GoogleCredentials string
}

func loadConfig() (*Config, error) {
	// .env is optional, real environment variables win in production.
	_ = godotenv.Load()

	config := &Config{
		Token:             os.Getenv("TOKEN"),
		CommandPrefix:     os.Getenv("COMMAND_PREFIX"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ScheduleURL:       os.Getenv("SCHEDULE_URL"),
		AdmissionURL:      os.Getenv("ADMISSION_URL"),
		SpreadsheetID:     os.Getenv("ADMISSION_SPREADSHEET_ID"),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
	}
	if config.CommandPrefix == "" {
		config.CommandPrefix = "-"
	}
	if config.ScheduleURL == "" {
		config.ScheduleURL = defaultScheduleURL
	}

	required := map[string]string{
		"TOKEN":        config.Token,
		"DATABASE_URL": config.DatabaseURL,
	}
	for key, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	interval := os.Getenv("DISTRIBUTION_INTERVAL")
	if interval == "" {
		interval = "15m"
	}
	parsed, err := time.ParseDuration(interval)
	if err != nil || parsed < time.Minute {
		return nil, fmt.Errorf("invalid DISTRIBUTION_INTERVAL: %q", interval)
	}
	config.DistributionInterval = parsed

	if config.ColorDefault, err = parseColor(os.Getenv("COLOR_DEFAULT"), 0x3498db); err != nil {
		return nil, err
	}
	if config.ColorError, err = parseColor(os.Getenv("COLOR_ERROR"), 0xe74c3c); err != nil {
		return nil, err
	}

	return config, nil
}

func parseColor(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(strings.TrimPrefix(raw, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	return int(value), nil
}
