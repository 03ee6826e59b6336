package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes read-only scheduler tools over MCP
type Server struct {
	server *mcpsdk.Server
}

// NewServer creates a new scheduler MCP server
func NewServer(handler *Handler, version string) *Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "scheduler-tools",
		Version: version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "scheduler_list_accounts",
		Description: "List every account the scheduler bot knows, with its conversation state and any pending request.",
	}, handler.ListAccounts)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "scheduler_account_status",
		Description: "Show whether an account has connected Google Calendar and what request, if any, awaits confirmation.",
	}, handler.AccountStatus)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "scheduler_list_items",
		Description: "List the reminders and meetings an account has confirmed, oldest first.",
	}, handler.ListItems)

	return &Server{server: server}
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}
