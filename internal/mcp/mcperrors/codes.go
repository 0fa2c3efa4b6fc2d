// Package mcperrors defines the error taxonomy shared by the MCP core and the
// mapping from each kind to its JSON-RPC error code.
// file: internal/mcp/mcperrors/codes.go
package mcperrors

// Kind classifies a failed request.
type Kind int

// Error kinds. The zero value is deliberately not a valid kind.
const (
	KindNotFound Kind = iota + 1
	KindInvalidArgument
	KindIoError
	KindMalformedInput
	KindInternal
)

// Standard JSON-RPC 2.0 error codes (-32768 to -32000 reserved).
const (
	CodeParseError     = -32700 // Invalid JSON received.
	CodeInvalidRequest = -32600 // Invalid request object.
	CodeMethodNotFound = -32601 // Method not found.
	CodeInvalidParams  = -32602 // Invalid method parameters.
	CodeInternalError  = -32603 // Internal JSON-RPC error.

	// Server-defined codes (-32000 to -32099).
	CodeRequestSequence = -32001 // Method not allowed in the current session state.
	CodeNotFound        = -32002 // Capability name or URI not in the catalog.
	CodeMalformedInput  = -32003 // Structured content supplied to a tool could not be parsed.
	CodeIoError         = -32004 // A filesystem collaborator failed.
)

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindNotFound, KindInvalidArgument, KindIoError, KindMalformedInput, KindInternal}
}

// Code returns the JSON-RPC code for a kind. Unknown kinds map to the
// internal error code.
func Code(k Kind) int {
	switch k {
	case KindNotFound:
		return CodeNotFound
	case KindInvalidArgument:
		return CodeInvalidParams
	case KindIoError:
		return CodeIoError
	case KindMalformedInput:
		return CodeMalformedInput
	default:
		return CodeInternalError
	}
}

// String returns the snake_case name used in logs, metrics and error data.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindIoError:
		return "io_error"
	case KindMalformedInput:
		return "malformed_input"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// UserFacingMessage returns a generic message for a JSON-RPC code.
func UserFacingMessage(code int) string {
	switch code {
	case CodeParseError:
		return "Failed to parse JSON request"
	case CodeInvalidRequest:
		return "Invalid request format"
	case CodeMethodNotFound:
		return "Method not found"
	case CodeInvalidParams:
		return "Invalid method parameters"
	case CodeRequestSequence:
		return "Request not allowed in the current session state"
	case CodeNotFound:
		return "Requested capability not found"
	case CodeMalformedInput:
		return "Malformed input"
	case CodeIoError:
		return "Filesystem operation failed"
	default:
		return "Internal server error"
	}
}
