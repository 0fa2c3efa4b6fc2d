// file: internal/forge/resources.go
package forge

import "github.com/dkoosis/mcpforge/internal/mcp/catalog"

// TemplateURIPrefix prefixes the URI of every template resource.
const TemplateURIPrefix = "forge://templates/"

// Resources returns one text/plain resource per content template, in
// template name order.
func (f *Forge) Resources() []catalog.ResourceDescriptor {
	names := f.content.Names()
	out := make([]catalog.ResourceDescriptor, 0, len(names))
	for _, name := range names {
		text, _ := f.content.Template(name)
		out = append(out, catalog.ResourceDescriptor{
			URI:      TemplateURIPrefix + name,
			Name:     name,
			MimeType: "text/plain",
			Content:  text,
		})
	}
	return out
}
