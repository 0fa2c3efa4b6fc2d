// Package config handles loading, parsing, and validating application configuration.
// Defaults come first, a YAML file second, and environment variables last.
// file: internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvServerName           = "FORGE_SERVER_NAME"
	EnvWorkspaceRoot        = "FORGE_WORKSPACE_ROOT"
	EnvLogLevel             = "FORGE_LOG_LEVEL"
	EnvLogFormat            = "FORGE_LOG_FORMAT"
	EnvMetricsAddr          = "FORGE_METRICS_ADDR"
	EnvValidationCollectAll = "FORGE_VALIDATION_COLLECT_ALL"
	EnvTracingExporter      = "FORGE_TRACING_EXPORTER"
	EnvTracingEndpoint      = "FORGE_TRACING_ENDPOINT"
)

// Trace exporters.
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout" // JSON spans on stderr.
	TraceExporterOTLP   = "otlp"   // OTLP over gRPC to Endpoint.
)

// ServerConfig holds the identity advertised to clients during initialize.
type ServerConfig struct {
	// Name is the server name reported in serverInfo. Required.
	Name string `yaml:"name"`
	// Title is an optional display name.
	Title string `yaml:"title,omitempty"`
	// Instructions is optional usage guidance sent to the client.
	Instructions string `yaml:"instructions,omitempty"`
}

// WorkspaceConfig controls where generated artifacts are written.
type WorkspaceConfig struct {
	// Root is the directory every tool-supplied path is resolved against.
	// Supports '~' expansion.
	Root string `yaml:"root"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// ValidationConfig controls argument validation.
type ValidationConfig struct {
	// CollectAll reports every violation instead of stopping at the first.
	CollectAll bool `yaml:"collect_all"`
}

// TracingConfig selects where dispatch spans are exported.
type TracingConfig struct {
	Exporter string `yaml:"exporter"`
	// Endpoint is the OTLP collector host:port. Required for "otlp".
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Workspace  WorkspaceConfig  `yaml:"workspace"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Validation ValidationConfig `yaml:"validation"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:  "mcp-forge",
			Title: "MCP Forge",
			Instructions: "Scaffolds Go MCP server projects. Use generate_project to start, " +
				"then generate_tool and generate_resource for individual pieces.",
		},
		Workspace: WorkspaceConfig{Root: "."},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Tracing:   TracingConfig{Exporter: TraceExporterNone},
	}
}

// Load returns the defaults with environment overrides applied, merged with
// the YAML file at path when path is not empty.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path comes from command-line flag, considered trusted input.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(cfg, logging.GetLogger("config_load"))
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish expands paths and validates.
func (c *Config) finish() error {
	root, err := ExpandPath(c.Workspace.Root)
	if err != nil {
		return err
	}
	c.Workspace.Root = root
	return c.Validate()
}

// Validate checks the required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Name) == "" {
		return errors.New("config: server.name must not be empty")
	}
	if strings.TrimSpace(c.Workspace.Root) == "" {
		return errors.New("config: workspace.root must not be empty")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return errors.Newf("config: unknown logging.level '%s'", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return errors.Newf("config: unknown logging.format '%s'", c.Logging.Format)
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "", TraceExporterNone, TraceExporterStdout:
	case TraceExporterOTLP:
		if strings.TrimSpace(c.Tracing.Endpoint) == "" {
			return errors.New("config: tracing.endpoint is required for the otlp exporter")
		}
	default:
		return errors.Newf("config: unknown tracing.exporter '%s'", c.Tracing.Exporter)
	}
	return nil
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(cfg *Config, logger logging.Logger) {
	override := func(envVar string, target *string) {
		if v := os.Getenv(envVar); v != "" {
			logger.Debug("Overriding setting from environment.", "envVar", envVar, "value", v)
			*target = v
		}
	}
	override(EnvServerName, &cfg.Server.Name)
	override(EnvWorkspaceRoot, &cfg.Workspace.Root)
	override(EnvLogLevel, &cfg.Logging.Level)
	override(EnvLogFormat, &cfg.Logging.Format)
	override(EnvMetricsAddr, &cfg.Metrics.Addr)
	override(EnvTracingExporter, &cfg.Tracing.Exporter)
	override(EnvTracingEndpoint, &cfg.Tracing.Endpoint)

	if raw := os.Getenv(EnvValidationCollectAll); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			logger.Debug("Overriding setting from environment.", "envVar", EnvValidationCollectAll, "value", b)
			cfg.Validation.CollectAll = b
		} else {
			logger.Warn("Invalid boolean environment variable ignored.", "envVar", EnvValidationCollectAll, "value", raw, "error", err)
		}
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory to expand path")
	}
	return filepath.Join(home, path[1:]), nil
}
