// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "gateway.yaml", `
server:
  http_addr: "127.0.0.1:9090"
  grpc_addr: ""
  shutdown_timeout: "3s"

database:
  path: "./test.db"

tools:
  base_url: "http://backend.internal:8080/"
  validate_parameters: true
  timeout: "15s"

voice:
  config_ids:
    restaurant: "cfg-rest"

dedupe:
  ttl: "1m"
  max_size: 50

rate_limit:
  requests_per_second: 5
  burst: 10

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.HTTPAddr)
	assert.Empty(t, cfg.Server.GRPCAddr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "./test.db", cfg.Database.Path)
	assert.True(t, cfg.Tools.ValidateParameters)
	assert.Equal(t, 15*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, "http://backend.internal:8080", cfg.ToolsBaseURL())
	assert.Equal(t, "cfg-rest", cfg.Voice.ConfigIDs["restaurant"])
	assert.Equal(t, time.Minute, cfg.Dedupe.TTL)
	assert.Equal(t, 50, cfg.Dedupe.MaxSize)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched keys keep their defaults
	assert.Equal(t, "wss://api.hume.ai/v0/evi/chat", cfg.Voice.URL)
	assert.Equal(t, 20*time.Second, cfg.Voice.PingInterval)
	assert.False(t, cfg.Auth.Enabled())
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "gateway.toml", `
[server]
http_addr = "0.0.0.0:7070"

[database]
path = ":memory:"

[tools]
timeout = "0"

[voice.config_ids]
phone = "cfg-phone"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7070", cfg.Server.HTTPAddr)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Zero(t, cfg.Tools.Timeout)
	assert.Equal(t, "cfg-phone", cfg.Voice.ConfigIDs["phone"])
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
	assert.Equal(t, "http://localhost:7070", cfg.ToolsBaseURL())
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_HUME_KEY", "hume-key-123")
	t.Setenv("TEST_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	path := writeConfig(t, "gateway.yaml", `
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
voice:
  api_key: "${TEST_HUME_KEY}"
  secret_key: "${TEST_UNSET_VARIABLE}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hume-key-123", cfg.Voice.APIKey)
	assert.Empty(t, cfg.Voice.SecretKey)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid yaml", "gateway.yaml", "server: [unclosed"},
		{"invalid toml", "gateway.toml", "[server\nhttp_addr = 1"},
		{"invalid duration", "gateway.yaml", "tools:\n  timeout: \"soon\"\n"},
		{"negative timeout", "gateway.yaml", "tools:\n  timeout: \"-1s\"\n"},
		{"short jwt secret", "gateway.yaml", "auth:\n  jwt_secret: \"short\"\n"},
		{"empty http addr", "gateway.yaml", "server:\n  http_addr: \"\"\n"},
		{"bad log format", "gateway.yaml", "logging:\n  format: \"xml\"\n"},
		{"bad log level", "gateway.yaml", "logging:\n  level: \"loud\"\n"},
		{"rate without burst", "gateway.yaml", "rate_limit:\n  requests_per_second: 3\n  burst: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ValidationErrorsWrapSentinel(t *testing.T) {
	_, err := Load(writeConfig(t, "gateway.yaml", "database:\n  path: \"\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDefault_NoFile(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Minute, cfg.Dedupe.TTL)
	assert.Equal(t, "http://localhost:8080", cfg.ToolsBaseURL())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/concierge/custom.yaml")
	assert.Equal(t, "/etc/concierge/custom.yaml", DefaultPath())

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/concierge/gateway.yaml", DefaultPath())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_A", "alpha")

	assert.Equal(t, "x alpha y", expandEnvVars("x ${TEST_A} y"))
	assert.Equal(t, "x  y", expandEnvVars("x ${TEST_NOT_SET_ANYWHERE} y"))
	assert.Equal(t, "$TEST_A", expandEnvVars("$TEST_A"), "bare $VAR is left alone")
}

func TestToolsBaseURL_FromListener(t *testing.T) {
	cfg := Default()
	cfg.Server.HTTPAddr = ":8181"
	assert.Equal(t, "http://localhost:8181", cfg.ToolsBaseURL())

	cfg.Server.HTTPAddr = "10.0.0.5:80"
	assert.Equal(t, "http://10.0.0.5:80", cfg.ToolsBaseURL())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gateway.yaml")

	cfg := Default()
	cfg.Server.HTTPAddr = "127.0.0.1:8088"
	cfg.Database.Path = ":memory:"
	cfg.Voice.APIKey = "${HUME_API_KEY}"
	cfg.Dedupe.TTLRaw = "2m"

	require.NoError(t, WriteFile(path, cfg))

	t.Setenv("HUME_API_KEY", "expanded")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8088", got.Server.HTTPAddr)
	assert.Equal(t, "expanded", got.Voice.APIKey)
	assert.Equal(t, 2*time.Minute, got.Dedupe.TTL)
}
