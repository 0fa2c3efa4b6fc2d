// Package jsonrpc runs a JSON-RPC 2.0 session over a transport: it parses
// frames, gates methods on the session lifecycle, and routes requests.
// file: internal/jsonrpc/types.go
package jsonrpc

import (
	"encoding/json"

	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
)

// Version is the JSON-RPC version string.
const Version = "2.0"

// Message is any inbound JSON-RPC message.
type Message struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      json.RawMessage    `json:"id,omitempty"`
	Method  string             `json:"method,omitempty"`
	Params  json.RawMessage    `json:"params,omitempty"`
	Result  json.RawMessage    `json:"result,omitempty"`
	Error   *envelope.RPCError `json:"error,omitempty"`
}

// IsNotification reports whether the message is a notification.
func (m *Message) IsNotification() bool {
	return m.Method != "" && m.ID == nil
}

// IsResponse reports whether the message is a response to a server request.
func (m *Message) IsResponse() bool {
	return m.Method == "" && m.ID != nil && (m.Result != nil || m.Error != nil)
}

// Response is an outbound JSON-RPC response. Exactly one of Result and
// Error is set; a nil result is sent as null.
type Response struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      json.RawMessage    `json:"id"`
	Result  json.RawMessage    `json:"result,omitempty"`
	Error   *envelope.RPCError `json:"error,omitempty"`
}

// unknownID is used when a frame's id cannot be recovered.
var unknownID = json.RawMessage("0")
