// file: internal/forge/handlers.go
package forge

import (
	"context"
	"fmt"
	"path"

	"github.com/dkoosis/mcpforge/internal/mcp/dispatch"
)

const defaultReadmePath = "README.md"

// generateProject creates the project directory and writes the skeleton
// files into it. The directory must not exist yet. Once the directory is
// created every file is written; cancellation does not cut a project short.
func (f *Forge) generateProject(_ context.Context, args dispatch.Arguments) (string, error) {
	name, err := args.RequireString("project_name")
	if err != nil {
		return "", err
	}
	data := newProjectData(name, args.StringOr("description", defaultProjectDescription))

	// Render everything before touching the disk so a template error leaves
	// no half-written project behind.
	rendered := make([]string, len(projectFiles))
	for i, pf := range projectFiles {
		if rendered[i], err = f.render(pf.template, data); err != nil {
			return "", err
		}
	}

	if err := f.out.CreateDir(name); err != nil {
		return "", err
	}
	for i, pf := range projectFiles {
		if err := f.out.WriteFile(path.Join(name, pf.output), rendered[i]); err != nil {
			return "", err
		}
	}

	f.logger.Info("Generated project.", "project", name, "files", len(projectFiles))
	return fmt.Sprintf("Project '%s' generated successfully in directory '%s'", name, name), nil
}

// generateTool returns Go source for a tool handler and its test.
func (f *Forge) generateTool(_ context.Context, args dispatch.Arguments) (string, error) {
	name, err := args.RequireString("tool_name")
	if err != nil {
		return "", err
	}
	description, err := args.RequireString("description")
	if err != nil {
		return "", err
	}
	f.logger.Debug("Generating tool code.", "tool_name", name)
	return f.render("tool.go", toolData{
		Name:        name,
		TypeName:    pascalCase(name),
		FuncName:    camelCase(name),
		Description: description,
	})
}

// generateResource returns Go source for a resource of the requested kind.
func (f *Forge) generateResource(_ context.Context, args dispatch.Arguments) (string, error) {
	name, err := args.RequireString("resource_name")
	if err != nil {
		return "", err
	}
	kind, err := args.RequireString("resource_type")
	if err != nil {
		return "", err
	}
	f.logger.Debug("Generating resource code.", "resource_name", name, "resource_type", kind)
	return f.render("resource.go", resourceData{
		Name:        name,
		TypeName:    pascalCase(name),
		Kind:        kind,
		Description: args.StringOr("description", ""),
	})
}

// generateReadme writes a README with setup instructions to output_path.
func (f *Forge) generateReadme(_ context.Context, args dispatch.Arguments) (string, error) {
	name, err := args.RequireString("project_name")
	if err != nil {
		return "", err
	}
	out := args.StringOr("output_path", defaultReadmePath)

	text, err := f.render("README.md", newProjectData(name, args.StringOr("description", defaultProjectDescription)))
	if err != nil {
		return "", err
	}
	if err := f.out.WriteFile(out, text); err != nil {
		return "", err
	}
	f.logger.Info("Generated README.", "project", name, "path", out)
	return fmt.Sprintf("README.md generated successfully at '%s'", out), nil
}

// validateManifest checks a manifest's JSON shape and required fields.
func (f *Forge) validateManifest(_ context.Context, args dispatch.Arguments) (string, error) {
	text, err := args.RequireString("manifest_content")
	if err != nil {
		return "", err
	}
	return ValidateManifest(text)
}
