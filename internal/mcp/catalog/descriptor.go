// Package catalog holds the immutable tables of tools, resources and prompts a
// server advertises.
// file: internal/mcp/catalog/descriptor.go
package catalog

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind identifies one of the three capability tables.
type Kind int

// Capability kinds.
const (
	KindTool Kind = iota + 1
	KindResource
	KindPrompt
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindResource:
		return "resource"
	case KindPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// JSON value types accepted in a Field declaration.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

func knownType(t string) bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray:
		return true
	}
	return false
}

// Field declares one argument of a tool.
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
	// Enum restricts a string field to the listed literals.
	Enum []string
	// PathSafe marks values that end up in a filesystem path.
	PathSafe bool
}

// InputSchema is the ordered list of a tool's argument fields.
type InputSchema struct {
	Fields []Field
}

// Field looks up a declared field by name.
func (s InputSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredNames returns the names of required fields in declared order.
func (s InputSchema) RequiredNames() []string {
	names := []string{}
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// JSONSchema renders the schema as a JSON Schema object suitable for the
// tools/list response and for compilation.
func (s InputSchema) JSONSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		p := map[string]interface{}{"type": f.Type}
		if f.Description != "" {
			p["description"] = f.Description
		}
		if len(f.Enum) > 0 {
			enum := make([]interface{}, len(f.Enum))
			for i, v := range f.Enum {
				enum[i] = v
			}
			p["enum"] = enum
		}
		props[f.Name] = p
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   s.RequiredNames(),
	}
}

// Descriptor is implemented by every catalog entry.
type Descriptor interface {
	Kind() Kind
	// Key is the name (tools, prompts) or URI (resources) the entry is looked up by.
	Key() string
}

// ToolDescriptor declares a callable tool.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      InputSchema

	compiled *jsonschema.Schema
}

// Kind implements Descriptor.
func (ToolDescriptor) Kind() Kind { return KindTool }

// Key implements Descriptor.
func (t ToolDescriptor) Key() string { return t.Name }

// Compiled returns the compiled JSON schema, or nil for descriptors that did
// not come out of a Builder.
func (t ToolDescriptor) Compiled() *jsonschema.Schema { return t.compiled }

// ResourceDescriptor declares a readable resource with fixed content.
type ResourceDescriptor struct {
	URI      string
	Name     string
	MimeType string
	Content  string
}

// Kind implements Descriptor.
func (ResourceDescriptor) Kind() Kind { return KindResource }

// Key implements Descriptor.
func (r ResourceDescriptor) Key() string { return r.URI }

// PromptArgument declares one argument of a prompt template.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptDescriptor declares a prompt template.
type PromptDescriptor struct {
	Name        string
	Description string
	Template    string
	Arguments   []PromptArgument
}

// Kind implements Descriptor.
func (PromptDescriptor) Kind() Kind { return KindPrompt }

// Key implements Descriptor.
func (p PromptDescriptor) Key() string { return p.Name }
