package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	StorageFlatFile = "flatfile"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	ConfidentialityXOR    = "xor"
	ConfidentialitySealed = "sealed"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName        string        `yaml:"service_name"`
	DataDir            string        `yaml:"data_dir"`
	Storage            string        `yaml:"storage"`
	PostgresDSN        string        `yaml:"postgres_dsn"`
	Confidentiality    string        `yaml:"confidentiality"`
	ConfidentialityKey string        `yaml:"confidentiality_key"`
	RateLimitWindow    time.Duration `yaml:"rate_limit_window"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	SeedDefaults       bool          `yaml:"seed"`
	HidePasswordInput  bool          `yaml:"hide_password"`
	LogLevel           string        `yaml:"log_level"`
	LogFile            string        `yaml:"log_file"`
}

func Default() Config {
	return Config{
		ServiceName:        "ballotbox",
		DataDir:            ".",
		Storage:            StorageFlatFile,
		Confidentiality:    ConfidentialityXOR,
		ConfidentialityKey: "SimpleKey123",
		RateLimitWindow:    time.Minute,
		BcryptCost:         bcrypt.DefaultCost,
		SeedDefaults:       true,
		HidePasswordInput:  true,
		LogLevel:           "info",
	}
}

// Load resolves configuration from defaults, an optional YAML file, the
// environment and finally command-line flags, each layer overriding the last.
func Load(args []string) (Config, error) {
	cfg := Default()

	flags := pflag.NewFlagSet("ballotbox", pflag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("BALLOTBOX_CONFIG"), "path to a YAML config file")
	dataDir := flags.String("data-dir", "", "directory holding users.txt, candidates.txt, votes.txt and audit.txt")
	storage := flags.String("storage", "", "state backend: flatfile, postgres or memory")
	postgresDSN := flags.String("postgres-dsn", "", "postgres DSN for the postgres backend")
	confidentiality := flags.String("confidentiality", "", "vote choice encoding: xor or sealed")
	confidentialityKey := flags.String("confidentiality-key", "", "shared secret for the vote choice encoding")
	rateLimitWindow := flags.Duration("rate-limit-window", 0, "minimum spacing between accepted login attempts")
	bcryptCost := flags.Int("bcrypt-cost", 0, "bcrypt cost for new credentials")
	seed := flags.Bool("seed", true, "seed the admin identity and sample candidates into empty stores")
	hidePassword := flags.Bool("hide-password", true, "disable echo for password prompts on a terminal")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn or error")
	logFile := flags.String("log-file", "", "log destination; - for stderr")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if path := strings.TrimSpace(*configPath); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.DataDir = envString("BALLOTBOX_DATA_DIR", cfg.DataDir)
	cfg.Storage = envString("BALLOTBOX_STORAGE", cfg.Storage)
	cfg.PostgresDSN = envString("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.Confidentiality = envString("BALLOTBOX_CONFIDENTIALITY", cfg.Confidentiality)
	cfg.ConfidentialityKey = envString("BALLOTBOX_CONFIDENTIALITY_KEY", cfg.ConfidentialityKey)
	cfg.RateLimitWindow = envDuration("BALLOTBOX_RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.BcryptCost = envInt("BALLOTBOX_BCRYPT_COST", cfg.BcryptCost)
	cfg.SeedDefaults = envBool("BALLOTBOX_SEED", cfg.SeedDefaults)
	cfg.HidePasswordInput = envBool("BALLOTBOX_HIDE_PASSWORD", cfg.HidePasswordInput)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)

	setString := func(name string, target *string, value string) {
		if flags.Changed(name) {
			*target = value
		}
	}
	setString("data-dir", &cfg.DataDir, *dataDir)
	setString("storage", &cfg.Storage, *storage)
	setString("postgres-dsn", &cfg.PostgresDSN, *postgresDSN)
	setString("confidentiality", &cfg.Confidentiality, *confidentiality)
	setString("confidentiality-key", &cfg.ConfidentialityKey, *confidentialityKey)
	setString("log-level", &cfg.LogLevel, *logLevel)
	setString("log-file", &cfg.LogFile, *logFile)
	if flags.Changed("rate-limit-window") {
		cfg.RateLimitWindow = *rateLimitWindow
	}
	if flags.Changed("bcrypt-cost") {
		cfg.BcryptCost = *bcryptCost
	}
	if flags.Changed("seed") {
		cfg.SeedDefaults = *seed
	}
	if flags.Changed("hide-password") {
		cfg.HidePasswordInput = *hidePassword
	}

	if strings.TrimSpace(cfg.LogFile) == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "ballotbox.log")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageFlatFile, StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	switch c.Confidentiality {
	case ConfidentialityXOR, ConfidentialitySealed:
	default:
		return fmt.Errorf("unknown confidentiality scheme %q", c.Confidentiality)
	}
	if c.ConfidentialityKey == "" {
		return errors.New("confidentiality key is required")
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("rate limit window must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
