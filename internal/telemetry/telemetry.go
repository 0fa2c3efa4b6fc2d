// Package telemetry builds the OpenTelemetry tracer provider that receives
// dispatch spans.
// file: internal/telemetry/telemetry.go
package telemetry

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewTracerProvider returns a provider exporting through the exporter named
// in cfg. Spans from the stdout exporter go to w, which must not be the
// protocol stream. The caller owns Shutdown, which flushes pending spans.
func NewTracerProvider(ctx context.Context, cfg config.TracingConfig, service, version string, w io.Writer) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("service.version", version),
	)

	var exporter sdktrace.SpanExporter
	switch strings.ToLower(cfg.Exporter) {
	case "", config.TraceExporterNone:
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	case config.TraceExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, errors.Wrap(err, "telemetry: create stdout exporter")
		}
		exporter = exp
	case config.TraceExporterOTLP:
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "telemetry: create otlp exporter for %s", cfg.Endpoint)
		}
		exporter = exp
	default:
		return nil, errors.Newf("telemetry: unknown exporter '%s'", cfg.Exporter)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}
