package main

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/bot_test")
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("SCHEDULE_URL", "")
	t.Setenv("DISTRIBUTION_INTERVAL", "")
	t.Setenv("COLOR_DEFAULT", "")
	t.Setenv("COLOR_ERROR", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if config.CommandPrefix != "-" {
		t.Errorf("prefix = %q, want default -", config.CommandPrefix)
	}
	if config.ScheduleURL != defaultScheduleURL {
		t.Errorf("schedule url = %q", config.ScheduleURL)
	}
	if config.DistributionInterval != 15*time.Minute {
		t.Errorf("interval = %v, want 15m", config.DistributionInterval)
	}
	if config.ColorDefault != 0x3498db || config.ColorError != 0xe74c3c {
		t.Errorf("colors = %#x, %#x", config.ColorDefault, config.ColorError)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("DISTRIBUTION_INTERVAL", "30m")
	t.Setenv("COLOR_DEFAULT", "0x2f3136")

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if config.CommandPrefix != "!" {
		t.Errorf("prefix = %q", config.CommandPrefix)
	}
	if config.DistributionInterval != 30*time.Minute {
		t.Errorf("interval = %v", config.DistributionInterval)
	}
	if config.ColorDefault != 0x2f3136 {
		t.Errorf("color = %#x", config.ColorDefault)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN", "")

	if _, err := loadConfig(); err == nil {
		t.Fatalf("loadConfig() without TOKEN should fail")
	}
}

func TestLoadConfigBadInterval(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("DISTRIBUTION_INTERVAL", "often")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("loadConfig() with a malformed interval should fail")
	}

	// Below the one minute floor.
	t.Setenv("DISTRIBUTION_INTERVAL", "10s")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("loadConfig() with a sub-minute interval should fail")
	}
}

func TestParseColor(t *testing.T) {
	if got, err := parseColor("", 0x123456); err != nil || got != 0x123456 {
		t.Errorf("parseColor(empty) = %#x, %v", got, err)
	}
	if got, err := parseColor("0xe74c3c", 0); err != nil || got != 0xe74c3c {
		t.Errorf("parseColor(prefixed) = %#x, %v", got, err)
	}
	if got, err := parseColor("3498db", 0); err != nil || got != 0x3498db {
		t.Errorf("parseColor(bare) = %#x, %v", got, err)
	}
	if _, err := parseColor("azure", 0); err == nil {
		t.Errorf("parseColor(word) should fail")
	}
}
