package validator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/caarlos0/env/v11"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// Config is a configuration for the validator application. Values come from
// DefaultConfig, then an optional YAML file, then the environment.
type Config struct {
	HTTPAddr    string `yaml:"http_addr" env:"HTTP_ADDR"`
	ISO8583Addr string `yaml:"iso8583_addr" env:"ISO8583_ADDR"`
	// Policy is "lenient" (drop non-digits) or "strict" (reject them).
	Policy string `yaml:"policy" env:"CARD_POLICY"`
	// Workers bounds the goroutines used for one batch; 1 checks sequentially.
	Workers  int `yaml:"workers" env:"CHECK_WORKERS"`
	MaxBatch int `yaml:"max_batch" env:"MAX_BATCH"`
	// RepoBackend selects the audit store: "mem" or "pg".
	RepoBackend string `yaml:"repo_backend" env:"REPO_BACKEND"`
	DBDSN       string `yaml:"db_dsn" env:"DB_DSN"`
	PANHashKey  string `yaml:"pan_hash_key" env:"PAN_HASH_KEY"`
	// ExpiryTZ is an IANA timezone name for expiry computations (e.g., "Australia/Sydney").
	ExpiryTZ string    `yaml:"expiry_tz" env:"EXPIRY_TZ"`
	LogLevel string    `yaml:"log_level" env:"LOG_LEVEL"`
	HSM      HSMConfig `yaml:"hsm" envPrefix:"HSM_"`
}

// HSMConfig points at a PKCS#11 token holding the PAN hash key. It is only
// used by binaries built with the softhsm tag.
type HSMConfig struct {
	Lib      string `yaml:"lib" env:"LIB"`
	Slot     uint   `yaml:"slot" env:"SLOT"`
	PIN      string `yaml:"pin" env:"PIN"`
	KeyLabel string `yaml:"key_label" env:"KEY_LABEL"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:    "localhost:9090",
		ISO8583Addr: "localhost:8583",
		Policy:      cardcheck.Lenient.String(),
		Workers:     4,
		MaxBatch:    1000,
		RepoBackend: "mem",
		PANHashKey:  "dev-secret-pepper",
		ExpiryTZ:    "UTC",
		LogLevel:    "info",
	}
}

// LoadConfig reads path (if not empty) over the defaults and applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := cardcheck.ParsePolicy(c.Policy); err != nil {
		return err
	}
	switch c.RepoBackend {
	case "mem":
	case "pg":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for pg backend")
		}
	default:
		return fmt.Errorf("unsupported REPO_BACKEND=%s", c.RepoBackend)
	}
	if c.MaxBatch <= 0 {
		return fmt.Errorf("max_batch must be positive (got %d)", c.MaxBatch)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative (got %d)", c.Workers)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// CheckPolicy returns the parsed input policy, lenient when unset or invalid.
func (c *Config) CheckPolicy() cardcheck.Policy {
	p, _ := cardcheck.ParsePolicy(c.Policy)
	return p
}

func (c *Config) Location() (*time.Location, error) {
	if c.ExpiryTZ == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.ExpiryTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_tz %q: %w", c.ExpiryTZ, err)
	}
	return loc, nil
}

func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return lvl, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
