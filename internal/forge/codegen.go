// file: internal/forge/codegen.go
package forge

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
)

const (
	defaultProjectDescription = "A new MCP server project"
	generatedGoVersion        = "1.24"
	generatedModuleHost       = "example.com"
)

// projectData feeds the project and README templates.
type projectData struct {
	ProjectName string
	Description string
	PackageName string
	ModulePath  string
	GoVersion   string
	Tools       []string
}

func newProjectData(name, description string) projectData {
	pkg := packageName(name)
	return projectData{
		ProjectName: name,
		Description: description,
		PackageName: pkg,
		ModulePath:  generatedModuleHost + "/" + pkg,
		GoVersion:   generatedGoVersion,
		Tools:       ToolNames(),
	}
}

// toolData feeds tool.go.
type toolData struct {
	Name        string
	TypeName    string
	FuncName    string
	Description string
}

// resourceData feeds resource.go.
type resourceData struct {
	Name        string
	TypeName    string
	Kind        string
	Description string
}

// projectFile maps a template to its path inside a generated project.
type projectFile struct {
	template string
	output   string
}

var projectFiles = []projectFile{
	{"go.mod", "go.mod"},
	{"main.go", "main.go"},
	{"server.go", "server.go"},
	{"tools.go", "tools.go"},
	{"resources.go", "resources.go"},
	{"errors.go", "errors.go"},
	{"gitignore", ".gitignore"},
}

// render executes the named template. A missing or failing template is an
// Internal failure; the catalog guarantees the names exist.
func (f *Forge) render(name string, data interface{}) (string, error) {
	t, ok := f.templates[name]
	if !ok {
		return "", mcperrors.Internal(fmt.Sprintf("template '%s' not found", name), nil)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", mcperrors.Internal(fmt.Sprintf("failed to render template '%s'", name), err)
	}
	return sb.String(), nil
}

// pascalCase joins the words of s, split on '_', '-' and spaces, with each
// word's first letter upper-cased: "hello_world" becomes "HelloWorld".
func pascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	var sb strings.Builder
	for _, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	out := sb.String()
	if out == "" || !unicode.IsLetter([]rune(out)[0]) {
		out = "X" + out
	}
	return out
}

// camelCase is pascalCase with a lower-case first letter.
func camelCase(s string) string {
	runes := []rune(pascalCase(s))
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// packageName derives a Go package and directory name from the last element
// of a project path: lower case, with every other character mapped to '_'.
func packageName(project string) string {
	base := path.Base(strings.ReplaceAll(project, `\`, "/"))
	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "mcp_" + out
	}
	return out
}
