package validation

import (
	"testing"

	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resourceSchema = catalog.InputSchema{Fields: []catalog.Field{
	{Name: "resource_name", Type: catalog.TypeString, Required: true},
	{Name: "resource_type", Type: catalog.TypeString, Required: true, Enum: []string{"text", "binary", "json"}},
	{Name: "description", Type: catalog.TypeString},
}}

func requireValidationError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*Error)
	require.True(t, ok, "Expected *validation.Error, got %T.", err)
	return verr
}

func TestValidate_MissingRequired_FailsRegardlessOfOtherFields(t *testing.T) {
	schema := catalog.InputSchema{Fields: []catalog.Field{
		{Name: "project_name", Type: catalog.TypeString, Required: true},
		{Name: "description", Type: catalog.TypeString},
	}}

	for _, args := range []map[string]interface{}{
		{},
		{"description": "x"},
		{"unrelated": 1, "other": []interface{}{"a"}},
		{"project_name": nil},
	} {
		for _, mode := range []Mode{ModeFailFast, ModeCollectAll} {
			verr := requireValidationError(t, New(mode).Validate(schema, args))
			assert.Contains(t, verr.Fields(), "project_name")
		}
	}
}

func TestValidate_FailFast_ReportsFirstDeclaredField(t *testing.T) {
	verr := requireValidationError(t, New(ModeFailFast).Validate(resourceSchema, map[string]interface{}{}))
	assert.Equal(t, []string{"resource_name"}, verr.Fields())
}

func TestValidate_CollectAll_ReportsEveryViolationInOrder(t *testing.T) {
	verr := requireValidationError(t, New(ModeCollectAll).Validate(resourceSchema, map[string]interface{}{
		"resource_type": "video",
		"description":   42.0,
	}))
	assert.Equal(t, []string{"resource_name", "resource_type", "description"}, verr.Fields())
}

func TestValidate_Enum(t *testing.T) {
	v := New(ModeFailFast)
	args := map[string]interface{}{"resource_name": "r", "resource_type": "json"}
	assert.NoError(t, v.Validate(resourceSchema, args))

	args["resource_type"] = "JSON"
	verr := requireValidationError(t, v.Validate(resourceSchema, args))
	assert.Equal(t, "resource_type", verr.Violations[0].Field)
	assert.Contains(t, verr.Violations[0].Reason, "text, binary, json")
}

func TestValidate_Types(t *testing.T) {
	schema := catalog.InputSchema{Fields: []catalog.Field{
		{Name: "count", Type: catalog.TypeInteger},
		{Name: "ratio", Type: catalog.TypeNumber},
		{Name: "flag", Type: catalog.TypeBoolean},
		{Name: "opts", Type: catalog.TypeObject},
		{Name: "list", Type: catalog.TypeArray},
	}}
	v := New(ModeCollectAll)

	assert.NoError(t, v.Validate(schema, map[string]interface{}{
		"count": 3.0, "ratio": 0.5, "flag": true,
		"opts": map[string]interface{}{}, "list": []interface{}{},
	}))

	verr := requireValidationError(t, v.Validate(schema, map[string]interface{}{
		"count": 3.5, "ratio": "half", "flag": "yes", "opts": []interface{}{}, "list": "a",
	}))
	assert.Equal(t, []string{"count", "ratio", "flag", "opts", "list"}, verr.Fields())
}

func TestValidate_UnknownKeysTolerated(t *testing.T) {
	args := map[string]interface{}{"resource_name": "r", "resource_type": "text", "extra": map[string]interface{}{"deep": true}}
	assert.NoError(t, New(ModeFailFast).Validate(resourceSchema, args))
}

func TestValidate_DoesNotMutateArguments(t *testing.T) {
	args := map[string]interface{}{"resource_name": "r", "resource_type": "bad"}
	_ = New(ModeCollectAll).Validate(resourceSchema, args)
	assert.Equal(t, map[string]interface{}{"resource_name": "r", "resource_type": "bad"}, args)
}

func TestValidateTool_RunsCompiledSchema(t *testing.T) {
	cat, err := catalog.NewBuilder().
		AddTool(catalog.ToolDescriptor{Name: "generate_resource", Schema: resourceSchema}).
		Build()
	require.NoError(t, err)
	tool, ok := cat.Tool("generate_resource")
	require.True(t, ok)

	v := New(ModeFailFast)
	assert.NoError(t, v.ValidateTool(tool, map[string]interface{}{"resource_name": "r", "resource_type": "binary"}))
	verr := requireValidationError(t, v.ValidateTool(tool, map[string]interface{}{"resource_type": "binary"}))
	assert.Equal(t, "resource_name", verr.Violations[0].Field)
}

func TestValidateTool_NullOptionalField_IsAbsent(t *testing.T) {
	cat, err := catalog.NewBuilder().
		AddTool(catalog.ToolDescriptor{Name: "generate_resource", Schema: resourceSchema}).
		Build()
	require.NoError(t, err)
	tool, ok := cat.Tool("generate_resource")
	require.True(t, ok)

	for _, mode := range []Mode{ModeFailFast, ModeCollectAll} {
		args := map[string]interface{}{"resource_name": "r", "resource_type": "text", "description": nil}
		assert.NoError(t, New(mode).ValidateTool(tool, args), "null optional field should pass both checks.")
		assert.Contains(t, args, "description", "Arguments must not be modified.")
	}

	verr := requireValidationError(t, New(ModeFailFast).ValidateTool(tool, map[string]interface{}{
		"resource_name": nil, "resource_type": "text",
	}))
	assert.Equal(t, []string{"resource_name"}, verr.Fields(), "null required field is still missing.")
}

func TestError_Failure_NamesFirstField(t *testing.T) {
	verr := &Error{Violations: []Violation{
		{Field: "project_name", Reason: "is required"},
		{Field: "description", Reason: "must be of type string"},
	}}
	f := verr.Failure()
	assert.Equal(t, mcperrors.KindInvalidArgument, f.Kind)
	assert.Equal(t, "project_name", f.Field)
	assert.Contains(t, f.Message, "project_name")
	assert.Contains(t, f.Detail, "description")
}

func TestCheckPathSafe_Rejects(t *testing.T) {
	for _, v := range []string{
		"../evil",
		"my/../project",
		"./project",
		"project/.",
		"/etc/passwd",
		"C:/project",
		"D:",
		"",
		"bad\x00name",
		"a/./b",
		`\share`,
	} {
		assert.Error(t, CheckPathSafe(v), "Expected %q to be rejected.", v)
	}
}

func TestCheckPathSafe_Accepts(t *testing.T) {
	for _, v := range []string{"my_project", "my-project", "project123", "a", "docs/README.md", "README.md"} {
		assert.NoError(t, CheckPathSafe(v), "Expected %q to be accepted.", v)
	}
}

func TestCheckPathSafe_SpecificReasons(t *testing.T) {
	assert.ErrorIs(t, CheckPathSafe(""), ErrPathEmpty)
	assert.ErrorIs(t, CheckPathSafe("../x"), ErrPathParent)
	assert.ErrorIs(t, CheckPathSafe("/x"), ErrPathAbsolute)
	assert.ErrorIs(t, CheckPathSafe("x\x00"), ErrPathNUL)
	assert.ErrorIs(t, CheckPathSafe("x/."), ErrPathDotSegment)
	assert.ErrorIs(t, CheckPathSafe("D:"), ErrPathDrive)
}

func TestCheckPathFields_OnlyChecksMarkedFields(t *testing.T) {
	schema := catalog.InputSchema{Fields: []catalog.Field{
		{Name: "project_name", Type: catalog.TypeString, Required: true, PathSafe: true},
		{Name: "description", Type: catalog.TypeString},
		{Name: "output_path", Type: catalog.TypeString, PathSafe: true},
	}}
	v := New(ModeFailFast)

	assert.NoError(t, v.CheckPathFields(schema, map[string]interface{}{
		"project_name": "demo", "description": "../not a path",
	}))

	verr := requireValidationError(t, v.CheckPathFields(schema, map[string]interface{}{
		"project_name": "demo", "output_path": "/etc/passwd",
	}))
	assert.Equal(t, []string{"output_path"}, verr.Fields())
}
