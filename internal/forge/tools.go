// file: internal/forge/tools.go
package forge

import "github.com/dkoosis/mcpforge/internal/mcp/catalog"

// Tool names.
const (
	ToolGenerateProject  = "generate_project"
	ToolGenerateTool     = "generate_tool"
	ToolGenerateResource = "generate_resource"
	ToolGenerateReadme   = "generate_readme"
	ToolValidateManifest = "validate_manifest"
)

// Resource content kinds accepted by generate_resource.
var resourceKinds = []string{"text", "binary", "json"}

// Tools returns the forge tool declarations in advertised order.
func Tools() []catalog.ToolDescriptor {
	return []catalog.ToolDescriptor{
		{
			Name:        ToolGenerateProject,
			Description: "Generate a new MCP server project structure",
			Schema: catalog.InputSchema{Fields: []catalog.Field{
				{Name: "project_name", Type: catalog.TypeString, Required: true, PathSafe: true,
					Description: "Name of the MCP server project"},
				{Name: "description", Type: catalog.TypeString, Description: "Project description"},
			}},
		},
		{
			Name:        ToolGenerateTool,
			Description: "Generate code for a new MCP tool",
			Schema: catalog.InputSchema{Fields: []catalog.Field{
				{Name: "tool_name", Type: catalog.TypeString, Required: true, Description: "Name of the tool"},
				{Name: "description", Type: catalog.TypeString, Required: true, Description: "Tool description"},
			}},
		},
		{
			Name:        ToolGenerateResource,
			Description: "Generate code for a new MCP resource",
			Schema: catalog.InputSchema{Fields: []catalog.Field{
				{Name: "resource_name", Type: catalog.TypeString, Required: true, Description: "Name of the resource"},
				{Name: "resource_type", Type: catalog.TypeString, Required: true, Enum: resourceKinds,
					Description: "Type of resource content"},
				{Name: "description", Type: catalog.TypeString, Description: "Resource description"},
			}},
		},
		{
			Name:        ToolGenerateReadme,
			Description: "Generate README.md with MCP server setup instructions",
			Schema: catalog.InputSchema{Fields: []catalog.Field{
				{Name: "project_name", Type: catalog.TypeString, Required: true, Description: "Name of the MCP server project"},
				{Name: "description", Type: catalog.TypeString, Description: "Project description"},
				{Name: "output_path", Type: catalog.TypeString, PathSafe: true,
					Description: "Output path for README.md (defaults to README.md)"},
			}},
		},
		{
			Name:        ToolValidateManifest,
			Description: "Validate an MCP server manifest file",
			Schema: catalog.InputSchema{Fields: []catalog.Field{
				{Name: "manifest_content", Type: catalog.TypeString, Required: true,
					Description: "Contents of the manifest file (JSON format)"},
			}},
		},
	}
}

// ToolNames lists the forge tool names in advertised order.
func ToolNames() []string {
	tools := Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}
