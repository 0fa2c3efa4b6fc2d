// file: cmd/mcpforge/app.go
package main

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/artifact"
	"github.com/dkoosis/mcpforge/internal/config"
	"github.com/dkoosis/mcpforge/internal/content"
	"github.com/dkoosis/mcpforge/internal/forge"
	"github.com/dkoosis/mcpforge/internal/jsonrpc"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp"
	"github.com/dkoosis/mcpforge/internal/mcp/dispatch"
	"github.com/dkoosis/mcpforge/internal/mcp/router"
	"github.com/dkoosis/mcpforge/internal/mcp/validation"
	"github.com/dkoosis/mcpforge/internal/metrics"
	"github.com/dkoosis/mcpforge/internal/telemetry"
	"github.com/dkoosis/mcpforge/internal/transport"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const errorBufferSize = 50

// app holds the wired components of one server process.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	out     *artifact.FS
	tracer  *sdktrace.TracerProvider
	metrics *metrics.Collector
	server  *mcp.Server
	router  router.Router
}

// newApp builds the catalog, dispatcher and server from cfg. Any malformed
// declaration or template fails here, before a client connects. Spans from
// the stdout exporter go to stderr; stdout carries protocol frames.
func newApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	return newAppWithTraceOutput(cfg, logger, os.Stderr)
}

func newAppWithTraceOutput(cfg *config.Config, logger logging.Logger, traceOut io.Writer) (*app, error) {
	logger = logging.OrNoop(logger)

	provider, err := content.New()
	if err != nil {
		return nil, errors.Wrap(err, "load templates")
	}
	tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Tracing, cfg.Server.Name, Version, traceOut)
	if err != nil {
		return nil, err
	}
	out, err := artifact.Open(cfg.Workspace.Root, logger)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, errors.Wrap(err, "open workspace")
	}
	a := &app{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		tracer:  tp,
		metrics: metrics.NewCollector(errorBufferSize),
	}

	f, err := forge.New(provider, out, logger)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	cat, reg, err := f.Build()
	if err != nil {
		a.close(context.Background())
		return nil, errors.Wrap(err, "build catalog")
	}

	mode := validation.ModeFailFast
	if cfg.Validation.CollectAll {
		mode = validation.ModeCollectAll
	}
	d, err := dispatch.New(cat, reg,
		dispatch.WithLogger(logger),
		dispatch.WithValidator(validation.New(mode)),
		dispatch.WithMetrics(a.metrics),
		dispatch.WithTracerProvider(a.tracer),
	)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	a.server, err = mcp.NewServer(mcp.Identity{
		Name:         cfg.Server.Name,
		Title:        cfg.Server.Title,
		Version:      Version,
		Instructions: cfg.Server.Instructions,
	}, cat, d, logger)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	a.router = router.NewRouter(logger)
	if err := a.server.RegisterRoutes(a.router); err != nil {
		a.close(context.Background())
		return nil, errors.Wrap(err, "register routes")
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Tracer shutdown failed.", "error", err)
	}
	if err := a.out.Close(); err != nil {
		a.logger.Warn("Workspace close failed.", "error", err)
	}
}

// runServe serves one session over t, plus the metrics endpoint when one
// is configured. It returns when the session ends.
func runServe(ctx context.Context, cfg *config.Config, logger logging.Logger, t transport.Transport) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	session, err := jsonrpc.NewSession(t, a.router,
		jsonrpc.WithLogger(a.logger),
		jsonrpc.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}
	a.logger.Info("Starting mcpforge.",
		"version", Version, "workspace", a.out.Dir(), "session_id", session.ID())

	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)
	defer stopMetrics()

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return a.metrics.Serve(metricsCtx, cfg.Metrics.Addr, a.logger)
		})
	}
	g.Go(func() error {
		defer stopMetrics()
		return session.Serve(gctx)
	})

	err = g.Wait()
	closeErr := t.Close()
	if err != nil {
		return err
	}
	if closeErr != nil && !transport.IsClosed(closeErr) {
		a.logger.Warn("Transport close failed.", "error", closeErr)
	}
	a.logger.Info("mcpforge stopped.")
	return nil
}
