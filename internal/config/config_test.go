// file: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{EnvServerName, EnvWorkspaceRoot, EnvLogLevel, EnvLogFormat, EnvMetricsAddr, EnvValidationCollectAll, EnvTracingExporter, EnvTracingEndpoint} {
		t.Setenv(v, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_ValidConfig_Succeeds(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  name: "Test Forge"
  instructions: "Be brief."
workspace:
  root: "/srv/forge"
logging:
  level: debug
  format: json
metrics:
  addr: "127.0.0.1:9090"
validation:
  collect_all: true
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err, "LoadFromFile should succeed for a valid file.")

	assert.Equal(t, "Test Forge", cfg.Server.Name)
	assert.Equal(t, "MCP Forge", cfg.Server.Title, "Unset fields keep their defaults.")
	assert.Equal(t, "Be brief.", cfg.Server.Instructions)
	assert.Equal(t, "/srv/forge", cfg.Workspace.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
	assert.True(t, cfg.Validation.CollectAll)
}

func TestLoadFromFile_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServerName, "From Env")
	t.Setenv(EnvValidationCollectAll, "true")
	t.Setenv(EnvMetricsAddr, ":9100")
	path := writeConfig(t, "server:\n  name: From File\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Server.Name)
	assert.True(t, cfg.Validation.CollectAll)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadFromFile_InvalidBoolEnv_Ignored(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvValidationCollectAll, "sometimes")
	path := writeConfig(t, "validation:\n  collect_all: true\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Validation.CollectAll, "An unparsable override should leave the file value.")
}

func TestLoadFromFile_Failures(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"empty server name", "server:\n  name: \"\"\n"},
		{"unknown level", "logging:\n  level: loud\n"},
		{"unknown format", "logging:\n  format: xml\n"},
		{"empty workspace", "workspace:\n  root: \"\"\n"},
		{"bad yaml", "server: [unterminated\n"},
		{"unknown exporter", "tracing:\n  exporter: zipkin\n"},
		{"otlp without endpoint", "tracing:\n  exporter: otlp\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Tracing(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(writeConfig(t, "tracing:\n  exporter: otlp\n  endpoint: \"collector:4317\"\n"))
	require.NoError(t, err)
	assert.Equal(t, TraceExporterOTLP, cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)

	t.Setenv(EnvTracingExporter, TraceExporterStdout)
	cfg, err = LoadFromFile(writeConfig(t, "server:\n  name: forge\n"))
	require.NoError(t, err)
	assert.Equal(t, TraceExporterStdout, cfg.Tracing.Exporter, "Environment should select the exporter.")
}

func TestLoadFromFile_MissingFile_Fails(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_NoPath_UsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Name, cfg.Server.Name)
	assert.Equal(t, ".", cfg.Workspace.Root)
	assert.False(t, cfg.Validation.CollectAll)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/forge")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "forge"), got)

	got, err = ExpandPath("relative/~x")
	require.NoError(t, err)
	assert.Equal(t, "relative/~x", got)

	got, err = ExpandPath("~user/x")
	require.NoError(t, err)
	assert.Equal(t, "~user/x", got, "Only the current user's home is expanded.")
}
