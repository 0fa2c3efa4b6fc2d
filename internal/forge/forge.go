// Package forge declares the MCP Forge capabilities (project scaffolding
// tools, template resources and guidance prompts) and implements the tool
// handlers.
// file: internal/forge/forge.go
package forge

import (
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/artifact"
	"github.com/dkoosis/mcpforge/internal/content"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/dispatch"
)

// Forge owns the collaborators the tool handlers need. Its methods are safe
// for concurrent use.
type Forge struct {
	content   *content.Provider
	out       *artifact.FS
	templates map[string]*template.Template
	logger    logging.Logger
}

// New parses every template of provider and returns a Forge writing through
// out. A template that does not parse is a startup error.
func New(provider *content.Provider, out *artifact.FS, logger logging.Logger) (*Forge, error) {
	if provider == nil {
		return nil, errors.New("forge: content provider is required")
	}
	if out == nil {
		return nil, errors.New("forge: artifact writer is required")
	}
	templates := make(map[string]*template.Template)
	for _, name := range provider.Names() {
		text, _ := provider.Template(name)
		t, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, errors.Wrapf(err, "forge: parse template %s", name)
		}
		templates[name] = t
	}
	return &Forge{
		content:   provider,
		out:       out,
		templates: templates,
		logger:    logging.OrNoop(logger).WithField("component", "forge"),
	}, nil
}

// Declare adds every forge tool, resource and prompt to b.
func (f *Forge) Declare(b *catalog.Builder) *catalog.Builder {
	for _, t := range Tools() {
		b.AddTool(t)
	}
	for _, r := range f.Resources() {
		b.AddResource(r)
	}
	for _, p := range Prompts() {
		b.AddPrompt(p)
	}
	return b
}

// Register binds a handler to every forge tool.
func (f *Forge) Register(reg *dispatch.Registry) error {
	for _, h := range []struct {
		name string
		fn   dispatch.HandlerFunc
	}{
		{ToolGenerateProject, f.generateProject},
		{ToolGenerateTool, f.generateTool},
		{ToolGenerateResource, f.generateResource},
		{ToolGenerateReadme, f.generateReadme},
		{ToolValidateManifest, f.validateManifest},
	} {
		if err := reg.Register(h.name, h.fn); err != nil {
			return err
		}
	}
	return nil
}

// Build declares and registers everything, returning the immutable catalog
// and a registry sealed against it.
func (f *Forge) Build() (*catalog.Catalog, *dispatch.Registry, error) {
	cat, err := f.Declare(catalog.NewBuilder()).Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, "forge: build catalog")
	}
	reg := dispatch.NewRegistry()
	if err := f.Register(reg); err != nil {
		return nil, nil, errors.Wrap(err, "forge: register handlers")
	}
	if err := reg.Seal(cat); err != nil {
		return nil, nil, errors.Wrap(err, "forge: seal registry")
	}
	return cat, reg, nil
}
