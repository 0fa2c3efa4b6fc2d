// file: internal/mcp/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/fsm"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcp/state"
	"github.com/dkoosis/mcpforge/internal/mcp/validation"
	"github.com/dkoosis/mcpforge/internal/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dkoosis/mcpforge/internal/mcp/dispatch"

// Outcome is the result of one dispatch: either a payload or a failure.
type Outcome struct {
	Payload string
	Failure *mcperrors.Failure
}

// Succeeded wraps a handler payload.
func Succeeded(payload string) Outcome {
	return Outcome{Payload: payload}
}

// Failed wraps a failure.
func Failed(f *mcperrors.Failure) Outcome {
	return Outcome{Failure: f}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// label is the metrics/tracing outcome name.
func (o Outcome) label() string {
	if o.OK() {
		return metrics.OutcomeSuccess
	}
	return o.Failure.Kind.String()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = logging.OrNoop(l) }
}

// WithValidator replaces the default fail-fast validator.
func WithValidator(v *validation.Validator) Option {
	return func(d *Dispatcher) {
		if v != nil {
			d.validator = v
		}
	}
}

// WithMetrics records every dispatch in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = c }
}

// WithTracerProvider sets the tracer provider. The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		if tp != nil {
			d.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// Dispatcher validates tool calls and runs their handlers. It holds only
// read-only state and is safe for concurrent use.
type Dispatcher struct {
	catalog   *catalog.Catalog
	registry  *Registry
	validator *validation.Validator
	logger    logging.Logger
	metrics   *metrics.Collector
	tracer    trace.Tracer
}

// New creates a dispatcher. The registry is sealed against cat if it is not
// sealed already.
func New(cat *catalog.Catalog, reg *Registry, opts ...Option) (*Dispatcher, error) {
	if cat == nil || reg == nil {
		return nil, errors.New("dispatch: catalog and registry are required")
	}
	if !reg.Sealed() {
		if err := reg.Seal(cat); err != nil {
			return nil, err
		}
	}
	d := &Dispatcher{
		catalog:   cat,
		registry:  reg,
		validator: validation.New(validation.ModeFailFast),
		logger:    logging.GetNoopLogger(),
		tracer:    otel.GetTracerProvider().Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithField("component", "dispatcher")
	return d, nil
}

// Dispatch looks up name, validates raw against the tool's schema and path
// rules, and runs the handler. Unknown names and invalid arguments never
// reach a handler. raw is not modified.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw map[string]interface{}) Outcome {
	start := time.Now()
	callID := uuid.NewString()
	log := d.logger.WithField("call_id", callID).WithField("tool", name)

	ctx, span := d.tracer.Start(ctx, "mcp.tools/call",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("mcp.tool", name),
			attribute.String("mcp.call_id", callID),
		),
	)
	defer span.End()

	machine, err := state.NewCallMachine(log)
	if err != nil {
		f := mcperrors.Internal("failed to start call", err)
		log.Error("Failed to build call state machine.", "error", fmt.Sprintf("%+v", err))
		return d.finish(span, name, Failed(f), start)
	}

	outcome := d.run(ctx, machine, log, name, raw)
	step(ctx, machine, log, state.EventRespond)
	return d.finish(span, name, outcome, start)
}

// step records call progress. A failed step is logged, never fatal to the call.
func step(ctx context.Context, machine *state.CallMachine, log logging.Logger, event fsm.Event) {
	if err := machine.Step(ctx, event); err != nil {
		log.Warn("Call state transition failed.", "event", event, "error", err)
	}
}

func (d *Dispatcher) run(ctx context.Context, machine *state.CallMachine, log logging.Logger, name string, raw map[string]interface{}) Outcome {
	tool, ok := d.catalog.Tool(name)
	if !ok {
		step(ctx, machine, log, state.EventReject)
		log.Debug("Tool not found.")
		return Failed(mcperrors.NotFound("tool", name))
	}
	handler, ok := d.registry.lookup(name)
	if !ok {
		// Seal guarantees a handler for every declared tool.
		step(ctx, machine, log, state.EventReject)
		return Failed(mcperrors.Internal(fmt.Sprintf("tool '%s' has no handler", name), nil))
	}

	if raw == nil {
		raw = map[string]interface{}{}
	}
	if err := d.validate(tool, raw); err != nil {
		step(ctx, machine, log, state.EventReject)
		log.Debug("Tool arguments rejected.", "error", err)
		return Failed(err.Failure())
	}

	step(ctx, machine, log, state.EventAccept)
	step(ctx, machine, log, state.EventDispatch)
	return d.invoke(ctx, log, name, handler, NewArguments(raw))
}

func (d *Dispatcher) validate(tool catalog.ToolDescriptor, raw map[string]interface{}) *validation.Error {
	if err := d.validator.ValidateTool(tool, raw); err != nil {
		return asValidationError(err)
	}
	if err := d.validator.CheckPathFields(tool.Schema, raw); err != nil {
		return asValidationError(err)
	}
	return nil
}

func asValidationError(err error) *validation.Error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr
	}
	return &validation.Error{Violations: []validation.Violation{{Field: "arguments", Reason: err.Error()}}}
}

// invoke runs the handler, converting panics into Fault failures.
func (d *Dispatcher) invoke(ctx context.Context, log logging.Logger, name string, h Handler, args Arguments) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			f := mcperrors.Fault(fmt.Sprintf("tool '%s' failed unexpectedly", name), errors.Newf("panic: %v", r))
			log.Error("Tool handler panicked.", "panic", fmt.Sprint(r), "stack", stack)
			d.metrics.RecordFault(name, fmt.Sprint(r), stack)
			outcome = Failed(f)
		}
	}()

	payload, err := h.Handle(ctx, args)
	if err == nil {
		return Succeeded(payload)
	}

	f, ok := mcperrors.AsFailure(err)
	if !ok {
		f = mcperrors.Internal(fmt.Sprintf("tool '%s' failed", name), err)
	}
	if f.Kind == mcperrors.KindInternal {
		log.Error("Tool handler failed.", "error", fmt.Sprintf("%+v", err))
	} else {
		log.Info("Tool handler returned failure.", "kind", f.Kind.String(), "error", err)
	}
	return Failed(f)
}

func (d *Dispatcher) finish(span trace.Span, name string, o Outcome, start time.Time) Outcome {
	elapsed := time.Since(start)
	d.metrics.RecordDispatch(name, o.label(), elapsed)

	span.SetAttributes(attribute.String("mcp.outcome", o.label()))
	if o.OK() {
		span.SetStatus(codes.Ok, "")
		return o
	}
	span.SetAttributes(attribute.Int("mcp.error_code", mcperrors.Code(o.Failure.Kind)))
	if o.Failure.Fault {
		span.SetAttributes(attribute.Bool("mcp.fault", true))
	}
	span.RecordError(o.Failure)
	span.SetStatus(codes.Error, o.Failure.Message)
	return o
}
