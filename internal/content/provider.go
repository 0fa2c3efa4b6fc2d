// Package content serves the static template texts used by the forge tools
// and advertised as resources.
// file: internal/content/provider.go
package content

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed templates/*.tmpl
var embedded embed.FS

const suffix = ".tmpl"

// Provider returns template texts by name. Names are file names without
// the .tmpl suffix, e.g. "main.go". Contents are loaded once and never change.
type Provider struct {
	texts map[string]string
	names []string
}

// New returns a provider over the embedded templates.
func New() (*Provider, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "content: open embedded templates")
	}
	return NewFromFS(sub)
}

// NewFromFS loads every *.tmpl file at the root of fsys.
func NewFromFS(fsys fs.FS) (*Provider, error) {
	matches, err := fs.Glob(fsys, "*"+suffix)
	if err != nil {
		return nil, errors.Wrap(err, "content: list templates")
	}
	p := &Provider{texts: make(map[string]string, len(matches))}
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, errors.Wrapf(err, "content: read %s", m)
		}
		name := strings.TrimSuffix(path.Base(m), suffix)
		p.texts[name] = string(data)
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)
	return p, nil
}

// Template returns the text for name.
func (p *Provider) Template(name string) (string, bool) {
	t, ok := p.texts[name]
	return t, ok
}

// Names lists every template name in sorted order.
func (p *Provider) Names() []string {
	return append([]string(nil), p.names...)
}
