package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer registers every tool of b on an MCP server.
func NewMCPServer(b *Bridge, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"moveready",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Tools to read and update a moving checklist: inventory, groceries, admin tasks and boxes."),
	)
	for _, d := range Definitions() {
		s.AddTool(mcp.NewToolWithRawSchema(d.Name, d.Description, d.Parameters), b.handle)
	}
	return s
}

func (b *Bridge) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	return mcp.NewToolResultText(string(b.Call(ctx, req.Params.Name, args))), nil
}

// ServeStdio runs the MCP server on in and out until ctx is done or in is
// closed.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}
