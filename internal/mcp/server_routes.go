// file: internal/mcp/server_routes.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcp/router"
	"github.com/dkoosis/mcpforge/internal/mcptypes"
)

// MCP method names served by RegisterRoutes.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
	MethodShutdown      = "shutdown"
	MethodExit          = "exit"
)

// RegisterRoutes binds every MCP method to s. Lifecycle ordering is
// enforced by the session, not here.
func (s *Server) RegisterRoutes(r router.Router) error {
	routes := []router.Route{
		{Method: MethodInitialize, Handler: s.handleInitialize},
		{Method: MethodInitialized, NotificationHandler: s.handleInitialized},
		{Method: MethodPing, Handler: handlePing},
		{Method: MethodToolsList, Handler: func(context.Context, json.RawMessage) (interface{}, error) {
			return s.ListTools(), nil
		}},
		{Method: MethodToolsCall, Handler: s.handleToolsCall},
		{Method: MethodResourcesList, Handler: func(context.Context, json.RawMessage) (interface{}, error) {
			return s.ListResources(), nil
		}},
		{Method: MethodResourcesRead, Handler: s.handleResourcesRead},
		{Method: MethodPromptsList, Handler: func(context.Context, json.RawMessage) (interface{}, error) {
			return s.ListPrompts(), nil
		}},
		{Method: MethodPromptsGet, Handler: s.handlePromptsGet},
		{Method: MethodShutdown, Handler: s.handleShutdown},
		{Method: MethodExit, NotificationHandler: s.handleExit},
	}
	for _, rt := range routes {
		if err := r.AddRoute(rt); err != nil {
			return err
		}
	}
	return nil
}

// decodeParams unmarshals params into dst. Absent params leave dst zero.
func decodeParams(method string, params json.RawMessage, dst interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return &envelope.RPCError{
			Code:    mcperrors.CodeInvalidParams,
			Message: "Invalid params for " + method,
			Data:    map[string]interface{}{"detail": err.Error()},
		}
	}
	return nil
}

func invalidParams(method, detail string) error {
	return &envelope.RPCError{
		Code:    mcperrors.CodeInvalidParams,
		Message: "Invalid params for " + method,
		Data:    map[string]interface{}{"detail": detail},
	}
}

// unwrap splits a facade response into the router's result/error pair.
func unwrap(resp envelope.Response) (interface{}, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var p mcptypes.InitializeParams
	if err := decodeParams(MethodInitialize, params, &p); err != nil {
		return nil, err
	}
	return s.Initialize(p), nil
}

func (s *Server) handleInitialized(_ context.Context, _ json.RawMessage) error {
	s.logger.Info("Client reported initialization complete.")
	return nil
}

func handlePing(context.Context, json.RawMessage) (interface{}, error) {
	return struct{}{}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p mcptypes.CallToolParams
	if err := decodeParams(MethodToolsCall, params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalidParams(MethodToolsCall, "name is required")
	}
	return unwrap(s.CallTool(ctx, p.Name, p.Arguments))
}

func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p mcptypes.ReadResourceParams
	if err := decodeParams(MethodResourcesRead, params, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, invalidParams(MethodResourcesRead, "uri is required")
	}
	return unwrap(s.ReadResource(ctx, p.URI))
}

func (s *Server) handlePromptsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p mcptypes.GetPromptParams
	if err := decodeParams(MethodPromptsGet, params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalidParams(MethodPromptsGet, "name is required")
	}
	return unwrap(s.GetPrompt(ctx, p.Name, p.Arguments))
}

func (s *Server) handleShutdown(context.Context, json.RawMessage) (interface{}, error) {
	s.logger.Info("Shutdown requested.")
	return nil, nil
}

func (s *Server) handleExit(context.Context, json.RawMessage) error {
	s.logger.Info("Exit notification received.")
	return nil
}
