package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBuilder() *Builder {
	return NewBuilder().
		AddTool(ToolDescriptor{
			Name:        "generate_project",
			Description: "Generate a project.",
			Schema: InputSchema{Fields: []Field{
				{Name: "project_name", Type: TypeString, Required: true, PathSafe: true},
				{Name: "description", Type: TypeString},
			}},
		}).
		AddTool(ToolDescriptor{
			Name: "generate_resource",
			Schema: InputSchema{Fields: []Field{
				{Name: "resource_name", Type: TypeString, Required: true},
				{Name: "resource_type", Type: TypeString, Required: true, Enum: []string{"text", "binary", "json"}},
			}},
		}).
		AddResource(ResourceDescriptor{URI: "forge://templates/main.go", Name: "main.go", MimeType: "text/plain", Content: "package main"}).
		AddResource(ResourceDescriptor{URI: "forge://templates/go.mod", Name: "go.mod", MimeType: "text/plain", Content: "module x"}).
		AddPrompt(PromptDescriptor{Name: "generate-tool", Template: "Write {tool_name}.", Arguments: []PromptArgument{{Name: "tool_name", Required: true}}})
}

func TestBuild_ValidDeclarations_Succeeds(t *testing.T) {
	c, err := sampleBuilder().Build()
	require.NoError(t, err, "Build should succeed for valid declarations.")

	assert.Equal(t, 2, c.Len(KindTool))
	assert.Equal(t, 2, c.Len(KindResource))
	assert.Equal(t, 1, c.Len(KindPrompt))

	tool, ok := c.Tool("generate_project")
	require.True(t, ok)
	assert.NotNil(t, tool.Compiled(), "Tool schema should be compiled.")
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	c, err := sampleBuilder().Build()
	require.NoError(t, err)

	tools := c.List(KindTool)
	require.Len(t, tools, 2)
	assert.Equal(t, "generate_project", tools[0].Key())
	assert.Equal(t, "generate_resource", tools[1].Key())

	resources := c.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "forge://templates/main.go", resources[0].URI)
	assert.Equal(t, "forge://templates/go.mod", resources[1].URI)
}

func TestList_IsIdempotent(t *testing.T) {
	c, err := sampleBuilder().Build()
	require.NoError(t, err)

	for _, kind := range []Kind{KindTool, KindResource, KindPrompt} {
		assert.Equal(t, c.List(kind), c.List(kind), "Listing %s twice should give identical results.", kind)
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	c, err := sampleBuilder().Build()
	require.NoError(t, err)

	tools := c.Tools()
	tools[0].Name = "mutated"

	again := c.Tools()
	assert.Equal(t, "generate_project", again[0].Name, "Mutating a listing must not change the catalog.")
	_, ok := c.Tool("generate_project")
	assert.True(t, ok)
}

func TestGet_ExactMatchOnly(t *testing.T) {
	c, err := sampleBuilder().Build()
	require.NoError(t, err)

	d, ok := c.Get(KindResource, "forge://templates/main.go")
	require.True(t, ok)
	assert.Equal(t, KindResource, d.Kind())

	_, ok = c.Get(KindTool, "Generate_Project")
	assert.False(t, ok, "Lookup must be case sensitive.")
	_, ok = c.Get(KindTool, "generate")
	assert.False(t, ok, "Lookup must not match prefixes.")
	_, ok = c.Get(KindPrompt, "generate_project")
	assert.False(t, ok, "Kinds have separate namespaces.")
}

func TestBuilder_RejectsInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantErr string
	}{
		{
			name:    "empty tool name",
			builder: NewBuilder().AddTool(ToolDescriptor{}),
			wantErr: "must not be empty",
		},
		{
			name:    "duplicate tool",
			builder: NewBuilder().AddTool(ToolDescriptor{Name: "a"}).AddTool(ToolDescriptor{Name: "a"}),
			wantErr: "duplicate tool 'a'",
		},
		{
			name:    "duplicate resource",
			builder: NewBuilder().AddResource(ResourceDescriptor{URI: "x://a"}).AddResource(ResourceDescriptor{URI: "x://a"}),
			wantErr: "duplicate resource",
		},
		{
			name:    "duplicate prompt",
			builder: NewBuilder().AddPrompt(PromptDescriptor{Name: "p"}).AddPrompt(PromptDescriptor{Name: "p"}),
			wantErr: "duplicate prompt",
		},
		{
			name: "unknown field type",
			builder: NewBuilder().AddTool(ToolDescriptor{Name: "a", Schema: InputSchema{Fields: []Field{
				{Name: "f", Type: "date"},
			}}}),
			wantErr: "unknown type",
		},
		{
			name: "enum on number",
			builder: NewBuilder().AddTool(ToolDescriptor{Name: "a", Schema: InputSchema{Fields: []Field{
				{Name: "f", Type: TypeNumber, Enum: []string{"1"}},
			}}}),
			wantErr: "enum",
		},
		{
			name: "duplicate field",
			builder: NewBuilder().AddTool(ToolDescriptor{Name: "a", Schema: InputSchema{Fields: []Field{
				{Name: "f", Type: TypeString}, {Name: "f", Type: TypeString},
			}}}),
			wantErr: "duplicate field",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestBuilder_CannotBeReused(t *testing.T) {
	b := sampleBuilder()
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.Error(t, err, "Second Build should fail.")
}

func TestInputSchema_JSONSchema(t *testing.T) {
	s := InputSchema{Fields: []Field{
		{Name: "resource_name", Type: TypeString, Required: true, Description: "Name."},
		{Name: "resource_type", Type: TypeString, Required: true, Enum: []string{"text", "json"}},
		{Name: "description", Type: TypeString},
	}}

	js := s.JSONSchema()
	assert.Equal(t, "object", js["type"])
	assert.Equal(t, []string{"resource_name", "resource_type"}, js["required"])

	props, ok := js["properties"].(map[string]interface{})
	require.True(t, ok)
	rt, ok := props["resource_type"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"text", "json"}, rt["enum"])
}
