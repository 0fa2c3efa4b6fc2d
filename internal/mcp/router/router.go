// Package router maps MCP method names to their handlers.
// file: internal/mcp/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
)

// Handler handles a request. The result is marshaled as the response
// result; an *envelope.RPCError is sent as-is and any other error is
// converted by the session.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NotificationHandler handles a notification. No response is sent.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Route binds a method to its handlers. At least one must be set.
type Route struct {
	Method              string
	Handler             Handler
	NotificationHandler NotificationHandler
}

// Router dispatches methods to routes.
type Router interface {
	// AddRoute registers a route. Methods are unique.
	AddRoute(route Route) error
	// Route runs the handler for method.
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (interface{}, error)
	// Has reports whether method is registered.
	Has(method string) bool
	// Routes returns the registered method names in sorted order.
	Routes() []string
}

type router struct {
	routes map[string]Route
	mu     sync.RWMutex
	logger logging.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger logging.Logger) Router {
	return &router{
		routes: make(map[string]Route),
		logger: logging.OrNoop(logger).WithField("component", "mcp_router"),
	}
}

// MethodNotFound builds the -32601 error for method.
func MethodNotFound(method string) *envelope.RPCError {
	return &envelope.RPCError{
		Code:    mcperrors.CodeMethodNotFound,
		Message: fmt.Sprintf("Method '%s' not found", method),
		Data:    map[string]interface{}{"method": method},
	}
}

func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return errors.New("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return errors.Newf("route for method '%s' must have a Handler or a NotificationHandler", route.Method)
	}
	if _, exists := r.routes[route.Method]; exists {
		r.logger.Warn("Attempted to register duplicate route.", "method", route.Method)
		return errors.Newf("route for method '%s' already registered", route.Method)
	}
	r.routes[route.Method] = route
	r.logger.Debug("Registered route.", "method", route.Method)
	return nil
}

func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (interface{}, error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	r.mu.RUnlock()

	if !exists {
		r.logger.Warn("Method not found in router.", "method", method)
		return nil, MethodNotFound(method)
	}

	if isNotification {
		switch {
		case route.NotificationHandler != nil:
			return nil, route.NotificationHandler(ctx, params)
		default:
			// A notification sent to a request method still runs; its result is dropped.
			r.logger.Debug("Notification for request-only method; discarding result.", "method", method)
			_, err := route.Handler(ctx, params)
			return nil, err
		}
	}

	if route.Handler == nil {
		r.logger.Warn("Request for notification-only method.", "method", method)
		return nil, MethodNotFound(method)
	}
	return route.Handler(ctx, params)
}

func (r *router) Has(method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[method]
	return ok
}

func (r *router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for m := range r.routes {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}
