package validator_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/validator"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := validator.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, validator.DefaultConfig(), cfg)
	require.Equal(t, cardcheck.Lenient, cfg.CheckPolicy())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardcheck.yaml")
	err := os.WriteFile(path, []byte(`
http_addr: ":8080"
policy: strict
workers: 8
expiry_tz: Australia/Sydney
hsm:
  lib: /usr/lib/softhsm/libsofthsm2.so
  key_label: pan-hmac
`), 0o600)
	require.NoError(t, err)

	t.Setenv("CHECK_WORKERS", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HSM_SLOT", "3")

	cfg, err := validator.LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "localhost:8583", cfg.ISO8583Addr)
	require.Equal(t, cardcheck.Strict, cfg.CheckPolicy())
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, "/usr/lib/softhsm/libsofthsm2.so", cfg.HSM.Lib)
	require.Equal(t, "pan-hmac", cfg.HSM.KeyLabel)
	require.Equal(t, uint(3), cfg.HSM.Slot)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Australia/Sydney", loc.String())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := validator.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o600))
	_, err = validator.LoadConfig(path)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*validator.Config)
	}{
		{"bad policy", func(c *validator.Config) { c.Policy = "picky" }},
		{"unknown backend", func(c *validator.Config) { c.RepoBackend = "redis" }},
		{"pg without dsn", func(c *validator.Config) { c.RepoBackend = "pg" }},
		{"zero max batch", func(c *validator.Config) { c.MaxBatch = 0 }},
		{"negative workers", func(c *validator.Config) { c.Workers = -1 }},
		{"bad timezone", func(c *validator.Config) { c.ExpiryTZ = "Mars/Olympus" }},
		{"bad log level", func(c *validator.Config) { c.LogLevel = "loud" }},
	}

	require.NoError(t, validator.DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validator.DefaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_LocationDefaultsToUTC(t *testing.T) {
	cfg := validator.DefaultConfig()
	cfg.ExpiryTZ = ""
	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}
