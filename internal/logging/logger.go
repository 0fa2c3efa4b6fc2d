// Package logging is the structured logging facade used by every mcpforge
// component. Packages take a Logger and never import slog directly.
// file: internal/logging/logger.go
package logging

import (
	"context"
)

// Logger is a leveled key/value logger. args alternate key and value.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithContext returns a logger for ctx. Backends may return the receiver.
	WithContext(ctx context.Context) Logger
	// WithField returns a child logger that always emits key=value.
	WithField(key string, value any) Logger
}

// NoopLogger discards everything. Collaborators built without a logger get
// one of these.
type NoopLogger struct{}

func (l *NoopLogger) Debug(_ string, _ ...any) {}
func (l *NoopLogger) Info(_ string, _ ...any)  {}
func (l *NoopLogger) Warn(_ string, _ ...any)  {}
func (l *NoopLogger) Error(_ string, _ ...any) {}

func (l *NoopLogger) WithContext(_ context.Context) Logger { return l }
func (l *NoopLogger) WithField(_ string, _ any) Logger     { return l }

var noop = &NoopLogger{}

// GetNoopLogger returns the shared discarding logger.
func GetNoopLogger() Logger {
	return noop
}

// defaultLogger backs GetLogger. It discards until main installs a real one.
var defaultLogger = GetNoopLogger()

// SetDefaultLogger installs logger as the process-wide base. nil is ignored.
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// GetLogger returns the base logger with component=name attached.
func GetLogger(name string) Logger {
	return defaultLogger.WithField("component", name)
}

// OrNoop guards optional logger parameters.
func OrNoop(logger Logger) Logger {
	if logger == nil {
		return noop
	}
	return logger
}
