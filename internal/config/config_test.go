package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadFrom_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOG_AUTH_APIKEY", "from-env")

	cfg, err := LoadFrom(Sources{
		ConfigFile: filepath.Join(dir, "missing.yaml"),
		EnvFile:    filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Auth.APIKey)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFrom_Precedence(t *testing.T) {
	dir := t.TempDir()

	yamlFile := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
  shutdowntimeout: 3s
auth:
  apikey: from-yaml
log:
  level: debug
metrics:
  enabled: true
  token: yaml-token
`)
	envFile := writeFile(t, dir, ".env", "CATALOG_SERVER_PORT=9090\nCATALOG_METRICS_TOKEN=dotenv-token\nUNRELATED=1\n")
	t.Setenv("CATALOG_METRICS_TOKEN", "env-token")

	cfg, err := LoadFrom(Sources{ConfigFile: yamlFile, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, ".env beats yaml")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "from-yaml", cfg.Auth.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "env-token", cfg.Metrics.Token, "process env beats .env")
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no api key", env: map[string]string{}},
		{name: "port out of range", env: map[string]string{"CATALOG_AUTH_APIKEY": "k", "CATALOG_SERVER_PORT": "70000"}},
		{name: "unknown log level", env: map[string]string{"CATALOG_AUTH_APIKEY": "k", "CATALOG_LOG_LEVEL": "loud"}},
		{name: "zero shutdown timeout", env: map[string]string{"CATALOG_AUTH_APIKEY": "k", "CATALOG_SERVER_SHUTDOWNTIMEOUT": "0s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(Sources{})
			require.Error(t, err)
		})
	}
}

func TestLoadFrom_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOG_AUTH_APIKEY", "k")

	_, err := LoadFrom(Sources{ConfigFile: writeFile(t, dir, "config.yaml", "server: [port")})
	require.Error(t, err)
}

func TestValidate_HashIsEnough(t *testing.T) {
	var cfg Config
	cfg.Server.Port = 1
	cfg.Server.ReadHeaderTimeout = time.Second
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Log.Level = "warn"

	require.ErrorIs(t, cfg.Validate(), ErrNoAPIKey)

	cfg.Auth.APIKeyHash = "$2a$10$abcdefghijklmnopqrstuv"
	require.NoError(t, cfg.Validate())
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	var cfg Config
	cfg.Auth.APIKey = "supersecretapikey"
	cfg.Metrics.Token = "scrape-token"

	s := cfg.String()
	assert.NotContains(t, s, "supersecretapikey")
	assert.NotContains(t, s, "scrape-token")
	assert.Contains(t, s, "auth.apikeyhash=<not configured>")
}

func TestKeyFromEnv(t *testing.T) {
	assert.Equal(t, "server.port", keyFromEnv("CATALOG_SERVER_PORT"))
	assert.Equal(t, "auth.apikeyhash", keyFromEnv("CATALOG_AUTH_APIKEYHASH"))
}
