package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcp/validation"
	"github.com/dkoosis/mcpforge/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var projectSchema = catalog.InputSchema{Fields: []catalog.Field{
	{Name: "project_name", Type: catalog.TypeString, Required: true, PathSafe: true},
	{Name: "description", Type: catalog.TypeString},
}}

type fixture struct {
	dispatcher *Dispatcher
	calls      *atomic.Int64
	collector  *metrics.Collector
	exporter   *tracetest.InMemoryExporter
}

func newFixture(t *testing.T, handler Handler, opts ...Option) fixture {
	t.Helper()
	cat, err := catalog.NewBuilder().
		AddTool(catalog.ToolDescriptor{Name: "generate_project", Schema: projectSchema}).
		Build()
	require.NoError(t, err)

	calls := &atomic.Int64{}
	reg := NewRegistry()
	require.NoError(t, reg.Register("generate_project", HandlerFunc(func(ctx context.Context, args Arguments) (string, error) {
		calls.Add(1)
		return handler.Handle(ctx, args)
	})))

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	collector := metrics.NewCollector(4)
	opts = append([]Option{WithMetrics(collector), WithTracerProvider(tp)}, opts...)
	d, err := New(cat, reg, opts...)
	require.NoError(t, err, "New should succeed.")
	return fixture{dispatcher: d, calls: calls, collector: collector, exporter: exporter}
}

func echoHandler() Handler {
	return HandlerFunc(func(_ context.Context, args Arguments) (string, error) {
		return "raw payload for " + args.StringOr("project_name", "?") + "\n  untouched  ", nil
	})
}

func TestDispatch_UnknownName_NeverInvokesHandler(t *testing.T) {
	fx := newFixture(t, echoHandler())

	for _, name := range []string{"missing_tool", "", "GENERATE_PROJECT", "generate_project "} {
		out := fx.dispatcher.Dispatch(context.Background(), name, map[string]interface{}{"project_name": "demo"})
		require.False(t, out.OK())
		assert.Equal(t, mcperrors.KindNotFound, out.Failure.Kind)
		assert.Contains(t, out.Failure.Message, name, "Message should name the unknown tool.")
	}
	assert.Zero(t, fx.calls.Load(), "Handler must not run for unknown names.")
}

func TestDispatch_Success_PassesPayloadThroughUnmodified(t *testing.T) {
	fx := newFixture(t, echoHandler())

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "demo"})
	require.True(t, out.OK())
	assert.Equal(t, "raw payload for demo\n  untouched  ", out.Payload)
	assert.EqualValues(t, 1, fx.calls.Load())
}

func TestDispatch_MissingRequired_IsInvalidArgument(t *testing.T) {
	fx := newFixture(t, echoHandler())

	for _, args := range []map[string]interface{}{nil, {}, {"description": "only description"}} {
		out := fx.dispatcher.Dispatch(context.Background(), "generate_project", args)
		require.False(t, out.OK())
		assert.Equal(t, mcperrors.KindInvalidArgument, out.Failure.Kind)
		assert.Equal(t, "project_name", out.Failure.Field)
		assert.Contains(t, out.Failure.Message, "project_name")
	}
	assert.Zero(t, fx.calls.Load())
}

func TestDispatch_UnsafePath_IsInvalidArgument(t *testing.T) {
	fx := newFixture(t, echoHandler())

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "../evil"})
	require.False(t, out.OK())
	assert.Equal(t, mcperrors.KindInvalidArgument, out.Failure.Kind)
	assert.Equal(t, "project_name", out.Failure.Field)
	assert.Zero(t, fx.calls.Load())
}

func TestDispatch_CollectAllValidator(t *testing.T) {
	fx := newFixture(t, echoHandler(), WithValidator(validation.New(validation.ModeCollectAll)))

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"description": 7.0})
	require.False(t, out.OK())
	assert.Equal(t, "project_name", out.Failure.Field)
	assert.Contains(t, out.Failure.Detail, "description", "Detail should list the other violation.")
}

func TestDispatch_HandlerFailure_KeepsKind(t *testing.T) {
	fx := newFixture(t, HandlerFunc(func(context.Context, Arguments) (string, error) {
		return "", errors.Wrap(mcperrors.IoError("directory already exists", nil), "generate")
	}))

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "demo"})
	require.False(t, out.OK())
	assert.Equal(t, mcperrors.KindIoError, out.Failure.Kind)
}

func TestDispatch_PlainError_IsInternal(t *testing.T) {
	fx := newFixture(t, HandlerFunc(func(context.Context, Arguments) (string, error) {
		return "", errors.New("unexpected")
	}))

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "demo"})
	require.False(t, out.OK())
	assert.Equal(t, mcperrors.KindInternal, out.Failure.Kind)
	assert.False(t, out.Failure.Fault)
}

func TestDispatch_Panic_IsFaultNotValidationError(t *testing.T) {
	fx := newFixture(t, HandlerFunc(func(context.Context, Arguments) (string, error) {
		panic("boom")
	}))

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "demo"})
	require.False(t, out.OK())
	assert.Equal(t, mcperrors.KindInternal, out.Failure.Kind)
	assert.True(t, out.Failure.Fault, "Recovered panics must be marked as faults.")
	assert.ErrorContains(t, out.Failure, "boom")

	s := fx.collector.Snapshot()
	assert.Equal(t, 1, s.Faults)

	// The dispatcher stays usable.
	out = fx.dispatcher.Dispatch(context.Background(), "missing", nil)
	assert.Equal(t, mcperrors.KindNotFound, out.Failure.Kind)
}

func TestDispatch_DoesNotMutateArguments(t *testing.T) {
	fx := newFixture(t, echoHandler())
	args := map[string]interface{}{"project_name": "demo", "extra": []interface{}{"x"}}

	fx.dispatcher.Dispatch(context.Background(), "generate_project", args)
	assert.Equal(t, map[string]interface{}{"project_name": "demo", "extra": []interface{}{"x"}}, args)
}

func TestDispatch_RecordsSpanAndMetrics(t *testing.T) {
	fx := newFixture(t, echoHandler())

	fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{"project_name": "demo"})
	fx.dispatcher.Dispatch(context.Background(), "nope", nil)

	spans := fx.exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "mcp.tools/call", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)

	s := fx.collector.Snapshot()
	assert.Equal(t, 2, s.TotalDispatches)
	assert.Equal(t, 1, s.DispatchOutcome[metrics.OutcomeSuccess])
	assert.Equal(t, 1, s.DispatchOutcome["not_found"])
}

func TestDispatch_ConcurrentDistinctNames_NoCrossTalk(t *testing.T) {
	const n = 32
	b := catalog.NewBuilder()
	reg := NewRegistry()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("tool_%d", i)
		b.AddTool(catalog.ToolDescriptor{Name: name, Schema: catalog.InputSchema{Fields: []catalog.Field{
			{Name: "value", Type: catalog.TypeString, Required: true},
		}}})
		reg.MustRegister(name, HandlerFunc(func(_ context.Context, args Arguments) (string, error) {
			v, _ := args.String("value")
			return name + ":" + v, nil
		}))
	}
	cat, err := b.Build()
	require.NoError(t, err)
	d, err := New(cat, reg)
	require.NoError(t, err)

	results := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("tool_%d", i)
			results[i] = d.Dispatch(context.Background(), name, map[string]interface{}{"value": fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	for i, out := range results {
		require.True(t, out.OK(), "Call %d failed: %v.", i, out.Failure)
		assert.Equal(t, fmt.Sprintf("tool_%d:%d", i, i), out.Payload)
	}
}

func TestRegistry_RejectsInvalidRegistrations(t *testing.T) {
	noop := HandlerFunc(func(context.Context, Arguments) (string, error) { return "", nil })
	reg := NewRegistry()

	require.NoError(t, reg.Register("a", noop))
	assert.ErrorContains(t, reg.Register("a", noop), "duplicate")
	assert.Error(t, reg.Register("", noop))
	assert.Error(t, reg.Register("b", nil))
	assert.Panics(t, func() { reg.MustRegister("a", noop) })
}

func TestRegistry_Seal_ChecksCatalog(t *testing.T) {
	noop := HandlerFunc(func(context.Context, Arguments) (string, error) { return "", nil })
	cat, err := catalog.NewBuilder().AddTool(catalog.ToolDescriptor{Name: "a"}).Build()
	require.NoError(t, err)

	missing := NewRegistry()
	assert.ErrorContains(t, missing.Seal(cat), "has no handler")

	extra := NewRegistry()
	extra.MustRegister("a", noop)
	extra.MustRegister("b", noop)
	assert.ErrorContains(t, extra.Seal(cat), "has no tool declaration")

	ok := NewRegistry()
	ok.MustRegister("a", noop)
	require.NoError(t, ok.Seal(cat))
	assert.Error(t, ok.Register("c", noop), "Registration after Seal must fail.")
}

func TestArguments_ReadOnlyView(t *testing.T) {
	raw := map[string]interface{}{"b": "two", "a": 1.0, "n": nil}
	args := NewArguments(raw)

	assert.Equal(t, []string{"a", "b", "n"}, args.Keys())
	assert.True(t, args.Has("b"))
	assert.False(t, args.Has("n"))
	assert.Equal(t, "fallback", args.StringOr("a", "fallback"))

	_, err := args.RequireString("missing")
	assert.Equal(t, mcperrors.KindInvalidArgument, mcperrors.KindOf(err))

	copied := args.Map()
	copied["b"] = "changed"
	v, _ := args.String("b")
	assert.Equal(t, "two", v)
}

func TestDispatch_CanceledContext_DoesNotPanic(t *testing.T) {
	fx := newFixture(t, echoHandler())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out Outcome
	require.NotPanics(t, func() {
		out = fx.dispatcher.Dispatch(ctx, "missing_tool", nil)
	})
	assert.Equal(t, mcperrors.KindNotFound, out.Failure.Kind)

	require.NotPanics(t, func() {
		out = fx.dispatcher.Dispatch(ctx, "generate_project", map[string]interface{}{"project_name": "demo"})
	})
	require.True(t, out.OK(), "A canceled caller does not change the outcome.")
	assert.Equal(t, "raw payload for demo\n  untouched  ", out.Payload)
}

func TestDispatch_ContextCanceledDuringHandler_KeepsHandlerResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx := newFixture(t, HandlerFunc(func(context.Context, Arguments) (string, error) {
		cancel()
		return "done", nil
	}))

	var out Outcome
	require.NotPanics(t, func() {
		out = fx.dispatcher.Dispatch(ctx, "generate_project", map[string]interface{}{"project_name": "demo"})
	})
	require.True(t, out.OK())
	assert.Equal(t, "done", out.Payload)
	assert.Equal(t, int64(1), fx.calls.Load())
}

func TestDispatch_NullOptionalArgument_TreatedAsAbsent(t *testing.T) {
	fx := newFixture(t, HandlerFunc(func(_ context.Context, args Arguments) (string, error) {
		return args.StringOr("description", "default description"), nil
	}))

	out := fx.dispatcher.Dispatch(context.Background(), "generate_project", map[string]interface{}{
		"project_name": "demo",
		"description":  nil,
	})
	require.True(t, out.OK(), "null optional field should be accepted: %v.", out.Failure)
	assert.Equal(t, "default description", out.Payload)
}
