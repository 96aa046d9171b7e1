package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the context engine tools
// registered.
func NewServer(svc *ContextService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gather",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_context",
		Description: "Assemble a token-budgeted context string for a task: a repository structure map, the highest-ranked full files, and semantic matches against the task description.",
	}, svc.BuildContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_index",
		Description: "Query a persisted semantic index by natural-language string and return the most similar code chunks.",
	}, svc.SearchIndex)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin
// closes or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
