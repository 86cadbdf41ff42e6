package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: dev
storage:
  dsn: "postgres://localhost/gatekeeper"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, time.Hour, cfg.TokenTTL())
	require.Equal(t, 30, cfg.Rate.Token.Limit)
	require.Equal(t, time.Minute, cfg.RateWindow())
	require.Equal(t, "gk:", cfg.Redis.Prefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
app:
  env: dev
server:
  addr: ":9999"
oauth:
  token_ttl: 2h
`)
	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("OAUTH_TOKEN_TTL", "30m")
	t.Setenv("RATE_TOKEN_LIMIT", "5")
	t.Setenv("APP_ENV", "PROD")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":7777", cfg.Server.Addr, "env wins over the file")
	require.Equal(t, 30*time.Minute, cfg.TokenTTL())
	require.Equal(t, 5, cfg.Rate.Token.Limit)
	require.Equal(t, "prod", cfg.App.Env, "env name is lowercased")
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
oauth:
  token_ttl: "not-a-duration"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
