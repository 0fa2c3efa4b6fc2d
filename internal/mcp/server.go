// Package mcp is the server facade: it lists the catalog and invokes tools,
// resources and prompts on behalf of the session layer.
// file: internal/mcp/server.go
package mcp

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/catalog"
	"github.com/dkoosis/mcpforge/internal/mcp/dispatch"
	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcptypes"
)

// Identity names the server in initialize responses.
type Identity struct {
	Name         string
	Title        string
	Version      string
	Instructions string
}

// Info summarizes the server for diagnostics.
type Info struct {
	Identity     Identity
	Capabilities mcptypes.ServerCapabilities
	Tools        []string
	Resources    []string
	Prompts      []string
}

// Server exposes the catalog and dispatcher. It keeps no per-call state.
type Server struct {
	identity   Identity
	catalog    *catalog.Catalog
	dispatcher *dispatch.Dispatcher
	logger     logging.Logger

	tools     []mcptypes.Tool
	resources []mcptypes.Resource
	prompts   []mcptypes.Prompt
}

// NewServer builds the facade and precomputes the three listings.
func NewServer(id Identity, cat *catalog.Catalog, d *dispatch.Dispatcher, logger logging.Logger) (*Server, error) {
	if cat == nil || d == nil {
		return nil, errors.New("mcp: catalog and dispatcher are required")
	}
	if id.Name == "" {
		return nil, errors.New("mcp: server name must not be empty")
	}
	s := &Server{
		identity:   id,
		catalog:    cat,
		dispatcher: d,
		logger:     logging.OrNoop(logger).WithField("component", "mcp_server"),
	}

	for _, t := range cat.Tools() {
		s.tools = append(s.tools, mcptypes.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema.JSONSchema(),
		})
	}
	for _, r := range cat.Resources() {
		s.resources = append(s.resources, mcptypes.Resource{
			URI:      r.URI,
			Name:     r.Name,
			MimeType: r.MimeType,
		})
	}
	for _, p := range cat.Prompts() {
		mp := mcptypes.Prompt{Name: p.Name, Description: p.Description}
		for _, a := range p.Arguments {
			mp.Arguments = append(mp.Arguments, mcptypes.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		s.prompts = append(s.prompts, mp)
	}

	s.logger.Info("MCP server ready.",
		"tools", len(s.tools), "resources", len(s.resources), "prompts", len(s.prompts))
	return s, nil
}

// Capabilities reports the capability kinds this server advertises.
func (s *Server) Capabilities() mcptypes.ServerCapabilities {
	return mcptypes.ServerCapabilities{
		Tools:     &mcptypes.ListChanged{},
		Resources: &mcptypes.ResourcesCapability{},
		Prompts:   &mcptypes.ListChanged{},
	}
}

// Initialize answers the protocol handshake.
func (s *Server) Initialize(params mcptypes.InitializeParams) mcptypes.InitializeResult {
	s.logger.Info("Client initializing.",
		"client", params.ClientInfo.Name,
		"clientVersion", params.ClientInfo.Version,
		"protocolVersion", params.ProtocolVersion)
	return mcptypes.InitializeResult{
		ProtocolVersion: mcptypes.ProtocolVersion,
		Capabilities:    s.Capabilities(),
		ServerInfo: mcptypes.Implementation{
			Name:    s.identity.Name,
			Title:   s.identity.Title,
			Version: s.identity.Version,
		},
		Instructions: s.identity.Instructions,
	}
}

// Info returns the server identity and the keys of every catalog entry.
func (s *Server) Info() Info {
	info := Info{Identity: s.identity, Capabilities: s.Capabilities()}
	for _, d := range s.catalog.List(catalog.KindTool) {
		info.Tools = append(info.Tools, d.Key())
	}
	for _, d := range s.catalog.List(catalog.KindResource) {
		info.Resources = append(info.Resources, d.Key())
	}
	for _, d := range s.catalog.List(catalog.KindPrompt) {
		info.Prompts = append(info.Prompts, d.Key())
	}
	return info
}

// ListTools returns the tools in declaration order.
func (s *Server) ListTools() mcptypes.ListToolsResult {
	return mcptypes.ListToolsResult{Tools: append([]mcptypes.Tool{}, s.tools...)}
}

// CallTool validates, dispatches and wraps one tool call.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) envelope.Response {
	return envelope.ToResponse(s.dispatcher.Dispatch(ctx, name, args))
}

// ListResources returns the resources in declaration order.
func (s *Server) ListResources() mcptypes.ListResourcesResult {
	return mcptypes.ListResourcesResult{Resources: append([]mcptypes.Resource{}, s.resources...)}
}

// ReadResource returns the stored content for uri.
func (s *Server) ReadResource(_ context.Context, uri string) envelope.Response {
	r, ok := s.catalog.Resource(uri)
	if !ok {
		s.logger.Debug("Resource not found.", "uri", uri)
		return envelope.FromFailure(mcperrors.NotFound("resource", uri))
	}
	return envelope.Success(mcptypes.ReadResourceResult{
		Contents: []mcptypes.ResourceContents{{URI: r.URI, MimeType: r.MimeType, Text: r.Content}},
	})
}

// ListPrompts returns the prompts in declaration order.
func (s *Server) ListPrompts() mcptypes.ListPromptsResult {
	return mcptypes.ListPromptsResult{Prompts: append([]mcptypes.Prompt{}, s.prompts...)}
}

// GetPrompt renders the named prompt as a single user message.
func (s *Server) GetPrompt(_ context.Context, name string, args map[string]string) envelope.Response {
	p, ok := s.catalog.Prompt(name)
	if !ok {
		s.logger.Debug("Prompt not found.", "prompt", name)
		return envelope.FromFailure(mcperrors.NotFound("prompt", name))
	}
	return envelope.Success(mcptypes.GetPromptResult{
		Description: p.Description,
		Messages: []mcptypes.PromptMessage{{
			Role:    mcptypes.RoleUser,
			Content: mcptypes.TextContent(RenderPrompt(p.Template, args)),
		}},
	})
}
