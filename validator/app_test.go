package validator_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/validator"
	"github.com/alovak/cardcheck/validator/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestApp(t *testing.T) {
	cfg := validator.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.ISO8583Addr = "127.0.0.1:0"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := validator.NewApp(logger, cfg)
	require.NoError(t, app.Start())
	defer app.Shutdown()

	require.NotEmpty(t, app.ISO8583ServerAddr)
	base := "http://" + app.Addr

	for _, path := range []string{"/-/live", "/-/ready"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	body, _ := json.Marshal(models.CheckRequest{Number: "5105 1051 0510 5100"})
	resp, err := http.Post(base+"/checks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res models.CheckResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.True(t, res.Valid)
	require.Equal(t, cardcheck.MasterCard, res.CardType)
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := validator.DefaultConfig()
	cfg.RepoBackend = "pg"

	app := validator.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.Error(t, app.Start())
	app.Shutdown()
}
