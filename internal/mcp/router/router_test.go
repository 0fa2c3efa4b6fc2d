// file: internal/mcp/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockHandler = errors.New("mock handler error")

func echoHandler(method string) Handler {
	return func(_ context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]string{"method": method, "params": string(params)}, nil
	}
}

func countingNotification(counter *atomic.Int32, err error) NotificationHandler {
	return func(_ context.Context, _ json.RawMessage) error {
		counter.Add(1)
		return err
	}
}

func requireRPCCode(t *testing.T, code int, err error) {
	t.Helper()
	require.Error(t, err)
	var rpcErr *envelope.RPCError
	require.True(t, errors.As(err, &rpcErr), "Expected *envelope.RPCError, got %T.", err)
	assert.Equal(t, code, rpcErr.Code)
}

func TestRouter_AddRoute_Succeeds(t *testing.T) {
	r := NewRouter(logging.GetNoopLogger())
	var n atomic.Int32

	require.NoError(t, r.AddRoute(Route{Method: "tools/list", Handler: echoHandler("tools/list")}))
	require.NoError(t, r.AddRoute(Route{Method: "notifications/initialized", NotificationHandler: countingNotification(&n, nil)}))

	assert.Equal(t, []string{"notifications/initialized", "tools/list"}, r.Routes())
	assert.True(t, r.Has("tools/list"))
	assert.False(t, r.Has("tools/call"))
}

func TestRouter_AddRoute_Fails(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler("ping")}))

	assert.Error(t, r.AddRoute(Route{Method: "", Handler: echoHandler("")}), "Empty method should fail.")
	assert.Error(t, r.AddRoute(Route{Method: "x"}), "Route without handlers should fail.")
	assert.Error(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler("ping")}), "Duplicate should fail.")
}

func TestRouter_Route_Request_Succeeds(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "tools/list", Handler: echoHandler("tools/list")}))

	res, err := r.Route(context.Background(), "tools/list", json.RawMessage(`{"a":1}`), false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"method": "tools/list", "params": `{"a":1}`}, res)
}

func TestRouter_Route_UnknownMethod_Fails(t *testing.T) {
	r := NewRouter(nil)
	_, err := r.Route(context.Background(), "nope", nil, false)
	requireRPCCode(t, mcperrors.CodeMethodNotFound, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRouter_Route_Notification(t *testing.T) {
	r := NewRouter(nil)
	var n atomic.Int32
	require.NoError(t, r.AddRoute(Route{Method: "notifications/initialized", NotificationHandler: countingNotification(&n, nil)}))
	require.NoError(t, r.AddRoute(Route{Method: "bad", NotificationHandler: countingNotification(&n, errMockHandler)}))

	res, err := r.Route(context.Background(), "notifications/initialized", nil, true)
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = r.Route(context.Background(), "bad", nil, true)
	assert.ErrorIs(t, err, errMockHandler)
	assert.Equal(t, int32(2), n.Load())
}

func TestRouter_Route_NotificationToRequestHandler_DropsResult(t *testing.T) {
	r := NewRouter(nil)
	var called atomic.Bool
	require.NoError(t, r.AddRoute(Route{Method: "ping", Handler: func(context.Context, json.RawMessage) (interface{}, error) {
		called.Store(true)
		return "pong", nil
	}}))

	res, err := r.Route(context.Background(), "ping", nil, true)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.True(t, called.Load())
}

func TestRouter_Route_RequestToNotificationOnly_Fails(t *testing.T) {
	r := NewRouter(nil)
	var n atomic.Int32
	require.NoError(t, r.AddRoute(Route{Method: "exit", NotificationHandler: countingNotification(&n, nil)}))

	_, err := r.Route(context.Background(), "exit", nil, false)
	requireRPCCode(t, mcperrors.CodeMethodNotFound, err)
	assert.Zero(t, n.Load())
}
