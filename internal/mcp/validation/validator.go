// Package validation checks tool arguments against a declared input schema.
// file: internal/mcp/validation/validator.go
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Mode selects how many violations a Validator reports.
type Mode int

const (
	// ModeFailFast stops at the first violation in declared field order.
	ModeFailFast Mode = iota
	// ModeCollectAll reports every violation.
	ModeCollectAll
)

// Violation is one failed check.
type Violation struct {
	Field  string
	Reason string
}

// Error is returned when arguments do not satisfy a schema.
type Error struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("'%s' %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in report order.
func (e *Error) Fields() []string {
	names := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		names = append(names, v.Field)
	}
	return names
}

// Failure converts the error into an InvalidArgument failure naming the
// first offending field. Further violations are listed in the detail.
func (e *Error) Failure() *mcperrors.Failure {
	if len(e.Violations) == 0 {
		return mcperrors.InvalidArgument("", "validation failed")
	}
	first := e.Violations[0]
	f := mcperrors.InvalidArgument(first.Field, first.Reason)
	if len(e.Violations) > 1 {
		f.WithDetail(e.Error())
	}
	f.Cause = e
	return f
}

// Validator checks argument maps against tool schemas. It holds no state
// besides its mode and is safe for concurrent use.
type Validator struct {
	mode Mode
}

// New returns a validator using mode.
func New(mode Mode) *Validator {
	return &Validator{mode: mode}
}

// Mode reports the validator's mode.
func (v *Validator) Mode() Mode {
	return v.mode
}

// Validate checks args against schema. Fields are visited in declared order:
// required fields must be present and non-null, present fields must have the
// declared type, and enum fields must hold one of the listed literals.
// Unknown keys are ignored. A non-nil result is always *Error.
func (v *Validator) Validate(schema catalog.InputSchema, args map[string]interface{}) error {
	var violations []Violation
	add := func(field, reason string) bool {
		violations = append(violations, Violation{Field: field, Reason: reason})
		return v.mode == ModeFailFast
	}

	for _, f := range schema.Fields {
		value, present := args[f.Name]
		if !present || value == nil {
			if f.Required && add(f.Name, "is required") {
				break
			}
			continue
		}
		if !matchesType(f.Type, value) {
			if add(f.Name, fmt.Sprintf("must be of type %s", f.Type)) {
				break
			}
			continue
		}
		if len(f.Enum) > 0 {
			s, _ := value.(string)
			if !contains(f.Enum, s) {
				if add(f.Name, fmt.Sprintf("must be one of [%s]", strings.Join(f.Enum, ", "))) {
					break
				}
			}
		}
	}

	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}

// ValidateTool runs Validate and then, when the declarative checks pass,
// the tool's compiled JSON schema. A null value counts as absent in both.
func (v *Validator) ValidateTool(tool catalog.ToolDescriptor, args map[string]interface{}) error {
	if err := v.Validate(tool.Schema, args); err != nil {
		return err
	}
	compiled := tool.Compiled()
	if compiled == nil {
		return nil
	}
	instance, err := normalize(args)
	if err != nil {
		return &Error{Violations: []Violation{{Field: "arguments", Reason: "must be a JSON object"}}}
	}
	err = compiled.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &Error{Violations: []Violation{{Field: "arguments", Reason: err.Error()}}}
	}
	return v.fromSchemaError(verr)
}

func (v *Validator) fromSchemaError(verr *jsonschema.ValidationError) *Error {
	out := &Error{}
	for _, be := range verr.BasicOutput().Errors {
		field := strings.TrimPrefix(be.InstanceLocation, "/")
		if field == "" || be.Error == "" {
			continue
		}
		out.Violations = append(out.Violations, Violation{Field: field, Reason: be.Error})
		if v.mode == ModeFailFast {
			break
		}
	}
	if len(out.Violations) == 0 {
		out.Violations = []Violation{{Field: "arguments", Reason: verr.Message}}
	}
	return out
}

// normalize round-trips args through encoding/json so the schema validator
// sees only the value types produced by JSON decoding. Top-level nulls are
// dropped, matching Validate, which treats them as absent.
func normalize(args map[string]interface{}) (interface{}, error) {
	present := make(map[string]interface{}, len(args))
	for k, v := range args {
		if v != nil {
			present[k] = v
		}
	}
	data, err := json.Marshal(present)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matchesType(t string, value interface{}) bool {
	switch t {
	case catalog.TypeString:
		_, ok := value.(string)
		return ok
	case catalog.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case catalog.TypeNumber:
		_, ok := toFloat(value)
		return ok
	case catalog.TypeInteger:
		f, ok := toFloat(value)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case catalog.TypeObject:
		_, ok := value.(map[string]interface{})
		return ok
	case catalog.TypeArray:
		_, ok := value.([]interface{})
		return ok
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
