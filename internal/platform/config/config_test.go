package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BALLOTBOX_CONFIG", "SERVICE_NAME", "BALLOTBOX_DATA_DIR", "BALLOTBOX_STORAGE", "POSTGRES_DSN",
		"BALLOTBOX_CONFIDENTIALITY", "BALLOTBOX_CONFIDENTIALITY_KEY", "BALLOTBOX_RATE_LIMIT_WINDOW",
		"BALLOTBOX_BCRYPT_COST", "BALLOTBOX_SEED", "BALLOTBOX_HIDE_PASSWORD", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageFlatFile || cfg.Confidentiality != ConfidentialityXOR {
		t.Fatalf("unexpected backends: %+v", cfg)
	}
	if cfg.ConfidentialityKey != "SimpleKey123" || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.SeedDefaults || !cfg.HidePasswordInput {
		t.Fatalf("expected seeding and hidden passwords by default")
	}
	if cfg.LogFile != filepath.Join(".", "ballotbox.log") {
		t.Fatalf("unexpected log file %q", cfg.LogFile)
	}
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "ballotbox.yaml")
	raw := []byte("data_dir: /from/file\nrate_limit_window: 30s\nconfidentiality: sealed\nlog_level: debug\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BALLOTBOX_CONFIG", path)
	t.Setenv("BALLOTBOX_DATA_DIR", "/from/env")
	t.Setenv("BALLOTBOX_SEED", "false")

	cfg, err := Load([]string{"--rate-limit-window", "5s", "--log-file", "-"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Fatalf("env should override file, got %q", cfg.DataDir)
	}
	if cfg.RateLimitWindow != 5*time.Second {
		t.Fatalf("flag should override file, got %v", cfg.RateLimitWindow)
	}
	if cfg.Confidentiality != ConfidentialitySealed || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SeedDefaults {
		t.Fatalf("expected seeding disabled by env")
	}
	if cfg.LogFile != "-" {
		t.Fatalf("unexpected log file %q", cfg.LogFile)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	cases := [][]string{
		{"--storage", "tape"},
		{"--storage", "postgres"},
		{"--confidentiality", "rot13"},
		{"--rate-limit-window", "0s"},
		{"--bcrypt-cost", "99"},
		{"--confidentiality-key", ""},
	}
	for _, args := range cases {
		if _, err := Load(args); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
}
