// file: internal/forge/prompts.go
package forge

import "github.com/dkoosis/mcpforge/internal/mcp/catalog"

func arg(name, description string, required bool) catalog.PromptArgument {
	return catalog.PromptArgument{Name: name, Description: description, Required: required}
}

// Prompts returns the guidance prompts. Templates use {argument}
// placeholders.
func Prompts() []catalog.PromptDescriptor {
	return []catalog.PromptDescriptor{
		{
			Name:        "generate-project",
			Description: "Generate a new MCP server project",
			Template: "Use the generate_project tool to create a new MCP server project in Go.\n\n" +
				"Parameters:\n" +
				"- project_name: Name of the new project (required, relative path)\n" +
				"- description: Project description (optional)\n\n" +
				"Example usage:\n" +
				"Generate an MCP server project named '{project_name}' with description '{description}'.",
			Arguments: []catalog.PromptArgument{
				arg("project_name", "The name of the project to create", true),
				arg("description", "A brief description of what the server does", false),
			},
		},
		{
			Name:        "generate-tool",
			Description: "Generate code template for a new MCP tool",
			Template: "Use the generate_tool tool to create a Go handler for a new MCP tool.\n\n" +
				"Parameters:\n" +
				"- tool_name: Name of the tool (required)\n" +
				"- description: What the tool does (required)\n\n" +
				"Example usage:\n" +
				"Generate a tool named '{tool_name}' that {description}.",
			Arguments: []catalog.PromptArgument{
				arg("tool_name", "The name of the tool to generate", true),
				arg("description", "Description of what the tool does", true),
			},
		},
		{
			Name:        "generate-resource",
			Description: "Generate code template for a new MCP resource",
			Template: "Use the generate_resource tool to create a Go type serving a new MCP resource.\n\n" +
				"Parameters:\n" +
				"- resource_name: Name of the resource (snake_case, required)\n" +
				"- resource_type: Type of resource - text, binary, or json (required)\n" +
				"- description: What the resource contains (optional)\n\n" +
				"Example usage:\n" +
				"Generate a {resource_type} resource named '{resource_name}' for {description}.",
			Arguments: []catalog.PromptArgument{
				arg("resource_name", "Name of the resource in snake_case", true),
				arg("resource_type", "Type: text, binary, or json", true),
				arg("description", "Description of the resource", false),
			},
		},
		{
			Name:        "generate-readme",
			Description: "Generate README.md with setup instructions",
			Template: "Use the generate_readme tool to create a README for a Go MCP server.\n\n" +
				"Parameters:\n" +
				"- project_name: Name of the MCP server project (required)\n" +
				"- description: Project description (optional)\n" +
				"- output_path: Where to save the README (optional, defaults to README.md)\n\n" +
				"Example usage:\n" +
				"Generate a README.md for the '{project_name}' project that {description}.",
			Arguments: []catalog.PromptArgument{
				arg("project_name", "The name of the MCP server project", true),
				arg("description", "Description of the project", false),
				arg("output_path", "Path where to save the README", false),
			},
		},
		{
			Name:        "validate-manifest",
			Description: "Validate an MCP server manifest file",
			Template: "Use the validate_manifest tool to check if a manifest JSON is valid.\n\n" +
				"Required fields in manifest:\n" +
				"- name: Server name\n" +
				"- version: Version number\n" +
				"- description: Server description\n\n" +
				"Parameters:\n" +
				"- manifest_content: The JSON manifest content as a string (required)\n\n" +
				"Example usage:\n" +
				"Validate this manifest JSON: {manifest_content}",
			Arguments: []catalog.PromptArgument{
				arg("manifest_content", "The manifest JSON content to validate", true),
			},
		},
		{
			Name:        "advanced-tool-implementation",
			Description: "Guide for implementing advanced MCP tools with error handling and cancellation",
			Template: "Implement a tool that will {tool_purpose}. For complex MCP tools in Go:\n\n" +
				"1. Return errors explicitly and wrap them with context\n" +
				"2. Accept a context.Context and stop work when it is cancelled\n" +
				"3. Decode input into a typed struct with json tags\n" +
				"4. Validate every input field before doing work\n" +
				"5. Write table-driven tests for success and error cases\n" +
				"6. Describe each input field in the tool's JSON schema\n" +
				"7. Return error messages a client can act on\n\n" +
				"The advanced_tool.go template demonstrates these patterns.",
			Arguments: []catalog.PromptArgument{
				arg("tool_purpose", "What the tool is designed to do", true),
			},
		},
		{
			Name:        "prompts-resources-guide",
			Description: "Guide for integrating Prompts and Resources in MCP servers",
			Template: "Prompts and Resources work together to give the model richer context:\n\n" +
				"PROMPTS:\n" +
				"- Use for multi-message conversations\n" +
				"- Support parameters for dynamic content\n" +
				"- Enable step-by-step problem solving\n\n" +
				"RESOURCES:\n" +
				"- Provide static or dynamic content by URI\n" +
				"- Support multiple MIME types (text, json, binary)\n" +
				"- Useful for config, documentation and data\n\n" +
				"See prompts_advanced.go and resources_advanced.go. " +
				"Use Resources for data access and Prompts for guidance.",
		},
		{
			Name:        "error-handling-patterns",
			Description: "Best practices for error handling in MCP servers",
			Template: "Proper error handling improves MCP server reliability:\n\n" +
				"INPUT VALIDATION:\n" +
				"- Check for required fields\n" +
				"- Validate parameter ranges and formats\n" +
				"- Return early with descriptive errors\n\n" +
				"ERROR RESPONSES:\n" +
				"- Map failures to JSON-RPC error codes (-32602 for invalid params)\n" +
				"- Define sentinel errors and match them with errors.Is\n" +
				"- Wrap causes with fmt.Errorf(\"...: %w\", err)\n\n" +
				"RECOVERY:\n" +
				"- Distinguish transient from permanent errors\n" +
				"- Recover panics at the handler boundary\n" +
				"- Log errors to stderr, never stdout\n\n" +
				"TESTING:\n" +
				"- Test both success and error paths\n" +
				"- Assert on error identity, not message text",
		},
		{
			Name:        "concurrency-patterns",
			Description: "Concurrency patterns for Go MCP servers",
			Template: "MCP servers in Go handle requests concurrently:\n\n" +
				"BASIC PATTERN:\n" +
				"func handler(ctx context.Context, in Input) (Output, error)\n\n" +
				"SHARED STATE:\n" +
				"- Guard mutable state with sync.Mutex or sync.RWMutex\n" +
				"- Prefer immutable data built once at startup\n" +
				"- Keep critical sections short\n\n" +
				"GOROUTINES:\n" +
				"- Use errgroup.Group to run and join related work\n" +
				"- Pass context.Context and honor ctx.Done()\n" +
				"- Never start a goroutine without knowing how it stops\n\n" +
				"TESTING:\n" +
				"- Run tests with -race",
		},
		{
			Name:        "testing-strategies",
			Description: "Testing strategies for MCP server implementations",
			Template: "Comprehensive testing keeps MCP servers reliable:\n\n" +
				"UNIT TESTS:\n" +
				"- Test tool logic in isolation\n" +
				"- Use table-driven tests with t.Run\n" +
				"- Cover success and error cases\n\n" +
				"PARAMETER VALIDATION:\n" +
				"- Test with valid inputs and boundary conditions\n" +
				"- Test with invalid or missing parameters\n\n" +
				"FAKES:\n" +
				"- Put external services behind small interfaces\n" +
				"- Use t.TempDir for filesystem work\n" +
				"- Use httptest for HTTP dependencies\n\n" +
				"INTEGRATION:\n" +
				"- Drive the server over an in-memory transport\n" +
				"- Test with the MCP Inspector\n\n" +
				"COVERAGE:\n" +
				"- Prioritize error paths\n" +
				"- go test -cover ./...",
		},
	}
}
