// Package envelope turns dispatch outcomes into protocol responses.
// file: internal/mcp/envelope/envelope.go
package envelope

import (
	"fmt"

	"github.com/dkoosis/mcpforge/internal/mcp/dispatch"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcptypes"
)

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Response carries exactly one of Result or Error.
type Response struct {
	Result interface{}
	Error  *RPCError
}

// OK reports whether the response is a success.
func (r Response) OK() bool {
	return r.Error == nil
}

// Success wraps a result value.
func Success(result interface{}) Response {
	return Response{Result: result}
}

// FromFailure builds an error response. The code comes from the failure
// kind; kind, detail and field travel as structured data. The cause is
// never exposed.
func FromFailure(f *mcperrors.Failure) Response {
	data := map[string]interface{}{"kind": f.Kind.String()}
	if f.Detail != "" {
		data["detail"] = f.Detail
	}
	if f.Field != "" {
		data["field"] = f.Field
	}
	if f.Fault {
		data["fault"] = true
	}
	msg := f.Message
	if msg == "" {
		msg = mcperrors.UserFacingMessage(mcperrors.Code(f.Kind))
	}
	return Response{Error: &RPCError{
		Code:    mcperrors.Code(f.Kind),
		Message: msg,
		Data:    data,
	}}
}

// FromError builds an error response for any error. Errors carrying a
// Failure keep its kind; others become Internal with a generic message.
func FromError(err error) Response {
	if f, ok := mcperrors.AsFailure(err); ok {
		return FromFailure(f)
	}
	return FromFailure(mcperrors.Internal(mcperrors.UserFacingMessage(mcperrors.CodeInternalError), err))
}

// ToResponse converts a tool dispatch outcome. A success becomes a
// CallToolResult with the payload as its single text content, unchanged.
func ToResponse(o dispatch.Outcome) Response {
	if !o.OK() {
		return FromFailure(o.Failure)
	}
	return Success(mcptypes.CallToolResult{
		Content: []mcptypes.Content{mcptypes.TextContent(o.Payload)},
	})
}
