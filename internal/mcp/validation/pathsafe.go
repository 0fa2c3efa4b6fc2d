// file: internal/mcp/validation/pathsafe.go
package validation

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
)

// Path-safety rejection reasons.
var (
	ErrPathEmpty      = errors.New("must not be empty")
	ErrPathNUL        = errors.New("must not contain a NUL byte")
	ErrPathParent     = errors.New("must not contain '..'")
	ErrPathAbsolute   = errors.New("must not be an absolute path")
	ErrPathDotSegment = errors.New("must not contain './' or end with '/.'")
	ErrPathDrive      = errors.New("must not start with a drive letter")
)

// CheckPathSafe reports whether value may be used as a path relative to the
// workspace root.
func CheckPathSafe(value string) error {
	switch {
	case value == "":
		return ErrPathEmpty
	case strings.ContainsRune(value, 0):
		return ErrPathNUL
	case strings.Contains(value, ".."):
		return ErrPathParent
	case strings.HasPrefix(value, "/") || strings.HasPrefix(value, `\`):
		return ErrPathAbsolute
	case strings.Contains(value, "./") || strings.HasSuffix(value, "/."):
		return ErrPathDotSegment
	case len(value) > 1 && isASCIILetter(value[0]) && value[1] == ':':
		return ErrPathDrive
	}
	return nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// CheckPathFields applies CheckPathSafe to every PathSafe field that is
// present in args. It runs after Validate, so present values are strings.
func (v *Validator) CheckPathFields(schema catalog.InputSchema, args map[string]interface{}) error {
	var violations []Violation
	for _, f := range schema.Fields {
		if !f.PathSafe {
			continue
		}
		raw, ok := args[f.Name]
		if !ok || raw == nil {
			continue
		}
		s, _ := raw.(string)
		if err := CheckPathSafe(s); err != nil {
			violations = append(violations, Violation{Field: f.Name, Reason: err.Error()})
			if v.mode == ModeFailFast {
				break
			}
		}
	}
	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}
