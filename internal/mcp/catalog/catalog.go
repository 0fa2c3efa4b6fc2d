// file: internal/mcp/catalog/catalog.go
package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Catalog is the read-only set of declared capabilities. It is safe for
// concurrent use without locking because nothing mutates it after Build.
type Catalog struct {
	tools     []ToolDescriptor
	resources []ResourceDescriptor
	prompts   []PromptDescriptor

	toolIndex     map[string]int
	resourceIndex map[string]int
	promptIndex   map[string]int
}

// Tools returns the tool descriptors in registration order.
func (c *Catalog) Tools() []ToolDescriptor {
	return append([]ToolDescriptor(nil), c.tools...)
}

// Tool looks up a tool by exact name.
func (c *Catalog) Tool(name string) (ToolDescriptor, bool) {
	i, ok := c.toolIndex[name]
	if !ok {
		return ToolDescriptor{}, false
	}
	return c.tools[i], true
}

// Resources returns the resource descriptors in registration order.
func (c *Catalog) Resources() []ResourceDescriptor {
	return append([]ResourceDescriptor(nil), c.resources...)
}

// Resource looks up a resource by exact URI.
func (c *Catalog) Resource(uri string) (ResourceDescriptor, bool) {
	i, ok := c.resourceIndex[uri]
	if !ok {
		return ResourceDescriptor{}, false
	}
	return c.resources[i], true
}

// Prompts returns the prompt descriptors in registration order.
func (c *Catalog) Prompts() []PromptDescriptor {
	return append([]PromptDescriptor(nil), c.prompts...)
}

// Prompt looks up a prompt by exact name.
func (c *Catalog) Prompt(name string) (PromptDescriptor, bool) {
	i, ok := c.promptIndex[name]
	if !ok {
		return PromptDescriptor{}, false
	}
	return c.prompts[i], true
}

// List returns the descriptors of one kind in registration order.
func (c *Catalog) List(kind Kind) []Descriptor {
	var out []Descriptor
	switch kind {
	case KindTool:
		out = make([]Descriptor, 0, len(c.tools))
		for _, t := range c.tools {
			out = append(out, t)
		}
	case KindResource:
		out = make([]Descriptor, 0, len(c.resources))
		for _, r := range c.resources {
			out = append(out, r)
		}
	case KindPrompt:
		out = make([]Descriptor, 0, len(c.prompts))
		for _, p := range c.prompts {
			out = append(out, p)
		}
	}
	return out
}

// Get looks up a descriptor by kind and key. Absence is reported through the
// boolean, never as an error.
func (c *Catalog) Get(kind Kind, key string) (Descriptor, bool) {
	switch kind {
	case KindTool:
		if t, ok := c.Tool(key); ok {
			return t, true
		}
	case KindResource:
		if r, ok := c.Resource(key); ok {
			return r, true
		}
	case KindPrompt:
		if p, ok := c.Prompt(key); ok {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of entries of one kind.
func (c *Catalog) Len(kind Kind) int {
	switch kind {
	case KindTool:
		return len(c.tools)
	case KindResource:
		return len(c.resources)
	case KindPrompt:
		return len(c.prompts)
	}
	return 0
}

// Builder collects declarations and produces a Catalog. The first invalid
// declaration is remembered and returned from Build.
type Builder struct {
	cat   *Catalog
	err   error
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{cat: &Catalog{
		toolIndex:     make(map[string]int),
		resourceIndex: make(map[string]int),
		promptIndex:   make(map[string]int),
	}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// AddTool declares a tool.
func (b *Builder) AddTool(t ToolDescriptor) *Builder {
	if b.built {
		return b.fail(errors.New("catalog: builder already used"))
	}
	if t.Name == "" {
		return b.fail(errors.New("catalog: tool name must not be empty"))
	}
	if _, dup := b.cat.toolIndex[t.Name]; dup {
		return b.fail(errors.Newf("catalog: duplicate tool '%s'", t.Name))
	}
	if err := checkSchema(t.Schema); err != nil {
		return b.fail(errors.Wrapf(err, "catalog: tool '%s'", t.Name))
	}
	t.Schema = InputSchema{Fields: cloneFields(t.Schema.Fields)}
	t.compiled = nil
	b.cat.toolIndex[t.Name] = len(b.cat.tools)
	b.cat.tools = append(b.cat.tools, t)
	return b
}

// AddResource declares a resource.
func (b *Builder) AddResource(r ResourceDescriptor) *Builder {
	if b.built {
		return b.fail(errors.New("catalog: builder already used"))
	}
	if r.URI == "" {
		return b.fail(errors.New("catalog: resource URI must not be empty"))
	}
	if _, dup := b.cat.resourceIndex[r.URI]; dup {
		return b.fail(errors.Newf("catalog: duplicate resource '%s'", r.URI))
	}
	b.cat.resourceIndex[r.URI] = len(b.cat.resources)
	b.cat.resources = append(b.cat.resources, r)
	return b
}

// AddPrompt declares a prompt.
func (b *Builder) AddPrompt(p PromptDescriptor) *Builder {
	if b.built {
		return b.fail(errors.New("catalog: builder already used"))
	}
	if p.Name == "" {
		return b.fail(errors.New("catalog: prompt name must not be empty"))
	}
	if _, dup := b.cat.promptIndex[p.Name]; dup {
		return b.fail(errors.Newf("catalog: duplicate prompt '%s'", p.Name))
	}
	p.Arguments = append([]PromptArgument(nil), p.Arguments...)
	b.cat.promptIndex[p.Name] = len(b.cat.prompts)
	b.cat.prompts = append(b.cat.prompts, p)
	return b
}

// Build compiles every tool schema and returns the finished catalog.
func (b *Builder) Build() (*Catalog, error) {
	if b.built {
		return nil, errors.New("catalog: builder already used")
	}
	b.built = true
	if b.err != nil {
		return nil, b.err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	for i := range b.cat.tools {
		t := &b.cat.tools[i]
		compiled, err := compileSchema(compiler, t.Name, t.Schema)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog: compile schema for tool '%s'", t.Name)
		}
		t.compiled = compiled
	}
	return b.cat, nil
}

func compileSchema(compiler *jsonschema.Compiler, name string, s InputSchema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, errors.Wrap(err, "marshal schema")
	}
	resourceID := "mcpforge://tools/" + name + ".json"
	if err := compiler.AddResource(resourceID, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "compiler.AddResource failed")
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, errors.Wrap(err, "compiler.Compile failed")
	}
	return compiled, nil
}

func checkSchema(s InputSchema) error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return errors.New("field name must not be empty")
		}
		if seen[f.Name] {
			return errors.Newf("duplicate field '%s'", f.Name)
		}
		seen[f.Name] = true
		if !knownType(f.Type) {
			return errors.Newf("field '%s' has unknown type '%s'", f.Name, f.Type)
		}
		if len(f.Enum) > 0 && f.Type != TypeString {
			return errors.Newf("field '%s' declares an enum but is not a string", f.Name)
		}
		if f.PathSafe && f.Type != TypeString {
			return errors.Newf("path-safe field '%s' must be a string", f.Name)
		}
	}
	return nil
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Enum = append([]string(nil), f.Enum...)
		out[i] = f
	}
	return out
}
