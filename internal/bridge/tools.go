package bridge

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewToolRegistry builds the fixed tool table. The set is closed: no
// tools are discovered or registered at runtime.
func NewToolRegistry() (*Registry, error) {
	return NewRegistry(
		&ToolSpec{
			Name:        "list_hosts",
			Description: "List hosts known to Foreman. Supports Foreman search expressions and organization/location scoping. Results are paginated.",
			InputSchema: listHostsSchema,
			Handler:     handleListHosts,
		},
		&ToolSpec{
			Name:        "get_host",
			Description: "Get full details of a single host by id or FQDN.",
			InputSchema: getHostSchema,
			Handler:     handleGetHost,
		},
		&ToolSpec{
			Name:        "create_host",
			Description: "Create a host. The host object is passed to Foreman unmodified; see Foreman's API documentation for accepted attributes.",
			InputSchema: createHostSchema,
			Handler:     handleCreateHost,
		},
		&ToolSpec{
			Name:        "update_host",
			Description: "Update attributes of an existing host by id or FQDN.",
			InputSchema: updateHostSchema,
			Handler:     handleUpdateHost,
		},
		&ToolSpec{
			Name:        "delete_host",
			Description: "Delete a host by id or FQDN.",
			InputSchema: deleteHostSchema,
			Handler:     handleDeleteHost,
		},
		&ToolSpec{
			Name:        "power_host",
			Description: "Run a power action on a host: on, off, soft (reboot), cycle (power cycle) or state (query).",
			InputSchema: powerHostSchema,
			Handler:     handlePowerHost,
		},
		&ToolSpec{
			Name:        "list_hostgroups",
			Description: "List host groups. Supports Foreman search expressions and pagination.",
			InputSchema: listingSchema,
			Handler:     handleListHostgroups,
		},
		&ToolSpec{
			Name:        "list_organizations",
			Description: "List organizations. Supports Foreman search expressions and pagination.",
			InputSchema: listingSchema,
			Handler:     handleListOrganizations,
		},
		&ToolSpec{
			Name:        "list_locations",
			Description: "List locations. Supports Foreman search expressions and pagination.",
			InputSchema: listingSchema,
			Handler:     handleListLocations,
		},
		&ToolSpec{
			Name:        "call_api",
			Description: "Call any Foreman API endpoint under /api directly. Use for resources without a dedicated tool; the response is returned unmodified.",
			InputSchema: callAPISchema,
			Handler:     handleCallAPI,
		},
	)
}

// registerTools wires every registry entry into the MCP server. The
// SDK announces the specs in tools/list; calls route through the
// dispatcher.
func (s *Server) registerTools() {
	for _, spec := range s.registry.List() {
		s.mcpServer.AddTool(
			&mcp.Tool{
				Name:        spec.Name,
				Description: spec.Description,
				InputSchema: spec.InputSchema,
			},
			s.wrapTool(spec.Name),
		)
	}
}

// wrapTool adapts the dispatcher to the SDK handler signature.
func (s *Server) wrapTool(name string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, derr := s.dispatcher.Dispatch(ctx, name, req.Params.Arguments)
		if derr != nil {
			return errorResult(derr), nil
		}
		return successResult(payload)
	}
}

// errorResult frames a bridge error as an MCP error result. The
// envelope keeps the kind tag machine-readable.
func errorResult(derr *Error) *mcp.CallToolResult {
	data, err := json.Marshal(map[string]*Error{"error": derr})
	if err != nil {
		data = []byte(`{"error":{"kind":"internal","message":"internal error"}}`)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

// successResult frames a handler payload as JSON text content.
func successResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResult(&Error{Kind: KindInternal, Message: "internal error"}), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
