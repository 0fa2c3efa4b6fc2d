// file: internal/mcp/mcperrors/failure.go
package mcperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Failure is the structured error produced by the validator, the dispatcher
// and tool handlers. Callers branch on Kind instead of parsing Message.
type Failure struct {
	// Kind selects the protocol error code.
	Kind Kind
	// Message is the human-readable summary sent to the client.
	Message string
	// Detail is optional side data, sent as structured error data.
	Detail string
	// Field names the offending argument or identifier, when there is one.
	Field string
	// Fault marks a recovered handler panic.
	Fault bool
	// Cause is the underlying error. Never sent to the client.
	Cause error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	base := fmt.Sprintf("%s: %s", f.Kind, f.Message)
	if f.Detail != "" {
		base += " (" + f.Detail + ")"
	}
	if f.Cause != nil {
		return fmt.Sprintf("%s: %v", base, f.Cause)
	}
	return base
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// WithDetail sets the detail string and returns f for chaining.
func (f *Failure) WithDetail(detail string) *Failure {
	f.Detail = detail
	return f
}

// WithField sets the offending field name and returns f for chaining.
func (f *Failure) WithField(field string) *Failure {
	f.Field = field
	return f
}

func newFailure(kind Kind, message string, cause error) *Failure {
	f := &Failure{Kind: kind, Message: message}
	if cause != nil {
		f.Cause = errors.WithStack(cause)
	}
	return f
}

// NotFound reports that a capability of the given kind is not in the catalog.
// The identifier is named in the message and carried as the detail.
func NotFound(capability, key string) *Failure {
	return newFailure(KindNotFound, fmt.Sprintf("%s '%s' not found", capability, key), nil).
		WithDetail(key).
		WithField(key)
}

// InvalidArgument reports a schema or path-safety violation on field.
func InvalidArgument(field, reason string) *Failure {
	return newFailure(KindInvalidArgument, fmt.Sprintf("invalid argument '%s': %s", field, reason), nil).
		WithField(field)
}

// IoError reports a failed filesystem operation.
func IoError(message string, cause error) *Failure {
	return newFailure(KindIoError, message, cause)
}

// MalformedInput reports structurally invalid content supplied to a tool.
func MalformedInput(message string, cause error) *Failure {
	return newFailure(KindMalformedInput, message, cause)
}

// Internal reports an unclassified handler error.
func Internal(message string, cause error) *Failure {
	return newFailure(KindInternal, message, cause)
}

// Fault reports a recovered handler panic.
func Fault(message string, cause error) *Failure {
	f := newFailure(KindInternal, message, cause)
	f.Fault = true
	return f
}

// AsFailure extracts a *Failure from anywhere in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf classifies err. Errors that carry no Failure are Internal.
func KindOf(err error) Kind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return KindInternal
}
