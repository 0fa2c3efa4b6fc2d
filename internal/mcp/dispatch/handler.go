// Package dispatch routes tool calls to their registered handlers after
// argument validation.
// file: internal/mcp/dispatch/handler.go
package dispatch

import (
	"context"
	"sort"

	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
)

// Handler executes one tool.
type Handler interface {
	// Handle returns the tool's text payload. Errors that are
	// *mcperrors.Failure keep their kind; any other error is Internal.
	Handle(ctx context.Context, args Arguments) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, args Arguments) (string, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, args Arguments) (string, error) {
	return f(ctx, args)
}

// Arguments is a read-only view of a call's argument object.
type Arguments struct {
	m map[string]interface{}
}

// NewArguments wraps m. The caller must not modify m afterwards.
func NewArguments(m map[string]interface{}) Arguments {
	return Arguments{m: m}
}

// Get returns the raw value for key.
func (a Arguments) Get(key string) (interface{}, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Has reports whether key is present with a non-null value.
func (a Arguments) Has(key string) bool {
	v, ok := a.m[key]
	return ok && v != nil
}

// String returns the value for key if it is a string.
func (a Arguments) String(key string) (string, bool) {
	s, ok := a.m[key].(string)
	return s, ok
}

// StringOr returns the string value for key, or def when the key is absent,
// null, or not a string.
func (a Arguments) StringOr(key, def string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return def
}

// RequireString returns the string value for key or an InvalidArgument failure.
func (a Arguments) RequireString(key string) (string, error) {
	s, ok := a.String(key)
	if !ok {
		return "", mcperrors.InvalidArgument(key, "is required")
	}
	return s, nil
}

// Len returns the number of keys.
func (a Arguments) Len() int {
	return len(a.m)
}

// Keys returns the keys in sorted order.
func (a Arguments) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a shallow copy of the underlying map.
func (a Arguments) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(a.m))
	for k, v := range a.m {
		out[k] = v
	}
	return out
}
