// file: internal/mcp/dispatch/registry.go
package dispatch

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
)

// Registry maps tool names to handlers. Registration happens at startup;
// after Seal the table is read-only.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]Handler
	order    []string
	sealed   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds the handler for name.
func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.sealed:
		return errors.Newf("dispatch: cannot register '%s' after Seal", name)
	case name == "":
		return errors.New("dispatch: handler name must not be empty")
	case h == nil:
		return errors.Newf("dispatch: nil handler for '%s'", name)
	}
	if _, dup := r.handlers[name]; dup {
		return errors.Newf("dispatch: duplicate handler for '%s'", name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on error. Use it from static
// registration code only.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Seal freezes the registry and checks it against cat: every tool needs a
// handler and every handler needs a tool.
func (r *Registry) Seal(cat *catalog.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.New("dispatch: registry already sealed")
	}
	for _, t := range cat.Tools() {
		if _, ok := r.handlers[t.Name]; !ok {
			return errors.Newf("dispatch: tool '%s' has no handler", t.Name)
		}
	}
	for _, name := range r.order {
		if _, ok := cat.Tool(name); !ok {
			return errors.Newf("dispatch: handler '%s' has no tool declaration", name)
		}
	}
	r.sealed = true
	return nil
}

// lookup is only called on sealed registries, whose map is never written again.
func (r *Registry) lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}
