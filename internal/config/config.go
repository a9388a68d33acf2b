package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// FileName is the tool config file inside a business's config directory.
const FileName = "smallbiz.yaml"

// Environment variables that override the config file.
const (
	EnvDataDir             = "SMALLBIZ_DATA_DIR"
	EnvLogLevel            = "SMALLBIZ_LOG_LEVEL"
	EnvAutoAcceptThreshold = "SMALLBIZ_AUTO_ACCEPT_THRESHOLD"
	EnvGitAutoCommit       = "SMALLBIZ_GIT_AUTO_COMMIT"
)

// Config represents the config/smallbiz.yaml tool configuration.
type Config struct {
	Classification ClassificationConfig `yaml:"classification"`
	Import         ImportConfig         `yaml:"import"`
	Invoicing      InvoicingConfig      `yaml:"invoicing"`
	Git            GitConfig            `yaml:"git"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// ClassificationConfig controls rule matching and auto-acceptance.
type ClassificationConfig struct {
	// AutoAcceptThreshold is compared against match confidence (always 1.0).
	// Values above 1.0 force every match through manual review.
	AutoAcceptThreshold float64 `yaml:"auto_accept_threshold"`
	RulesFile           string  `yaml:"rules_file"` // relative to the business directory
}

// ImportConfig holds bank import defaults.
type ImportConfig struct {
	BankAccount         string `yaml:"bank_account"`
	ExpenseAccount      string `yaml:"expense_account"`
	IncomeAccount       string `yaml:"income_account"`
	DuplicatesByAccount bool   `yaml:"duplicates_by_account"`
}

// InvoicingConfig holds invoice defaults.
type InvoicingConfig struct {
	DueDays        int `yaml:"due_days"`
	QuoteValidDays int `yaml:"quote_valid_days"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a smallbiz.yaml file from disk. Fields absent from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new business.
func Default() *Config {
	return &Config{
		Classification: ClassificationConfig{
			AutoAcceptThreshold: 1.0,
			RulesFile:           filepath.Join("config", "classification_rules.yaml"),
		},
		Import: ImportConfig{
			BankAccount:         "BANK",
			ExpenseAccount:      "EXP-UNCLASSIFIED",
			IncomeAccount:       "INC-UNCLASSIFIED",
			DuplicatesByAccount: true,
		},
		Invoicing: InvoicingConfig{
			DueDays:        30,
			QuoteValidDays: 30,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "smallbiz",
			AuthorEmail: "smallbiz@localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Path returns the config file location for a business directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config", FileName)
}

// ForDataDir loads the business's config file, falling back to Default when
// it does not exist, then applies environment overrides.
func ForDataDir(dataDir string) (*Config, error) {
	cfg, err := Load(Path(dataDir))
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment. With no path
// it tries ./.env and ignores a missing file.
func LoadDotEnv(envPath ...string) error {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// ApplyEnv overrides cfg fields from SMALLBIZ_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvAutoAcceptThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAutoAcceptThreshold, err)
		}
		cfg.Classification.AutoAcceptThreshold = f
	}
	if v := os.Getenv(EnvGitAutoCommit); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvGitAutoCommit, err)
		}
		cfg.Git.AutoCommit = b
	}
	return nil
}

// DataDir returns SMALLBIZ_DATA_DIR, or fallback when it is unset.
func DataDir(fallback string) string {
	if v := os.Getenv(EnvDataDir); v != "" {
		return v
	}
	return fallback
}

// LoadSettings reads config/settings.json under dataDir, returning
// model.DefaultSettings when the file does not exist.
func LoadSettings(dataDir string) (model.Settings, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, "config", "settings.json"))
	if errors.Is(err, os.ErrNotExist) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	var s model.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return model.Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}
