// Package mcpserver exposes the control plane to MCP clients over stdio.
// Tools map one-to-one onto control plane operations, so an agent can manage
// configurations without touching the bridge directory.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pierregondois/lisa/pkg/logging"
)

const subsystem = "MCP"

// Server wraps the MCP stdio server and its tool handlers.
type Server struct {
	mcp *server.MCPServer
}

// NewServer builds the MCP server with every control plane tool registered.
func NewServer(version string) *Server {
	s := server.NewMCPServer(
		"lisa",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("lisa_list_features",
		mcp.WithDescription("List the selectable features and their parameters"),
	), handleListFeatures)

	s.AddTool(mcp.NewTool("lisa_list_configs",
		mcp.WithDescription("List live configurations with activation state and selected features"),
	), handleListConfigs)

	s.AddTool(mcp.NewTool("lisa_create_config",
		mcp.WithDescription("Create a named configuration"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Configuration name")),
	), handleCreateConfig)

	s.AddTool(mcp.NewTool("lisa_delete_config",
		mcp.WithDescription("Destroy a named configuration, tearing it down first when active"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Configuration name")),
	), handleDeleteConfig)

	s.AddTool(mcp.NewTool("lisa_read_file",
		mcp.WithDescription("Read a file of the virtual configuration tree"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute virtual path, e.g. /configs/foo/select_features")),
	), handleReadFile)

	s.AddTool(mcp.NewTool("lisa_write_file",
		mcp.WithDescription("Write comma separated values to a virtual value file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute virtual path")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Comma separated tokens")),
		mcp.WithBoolean("append", mcp.Description("Append to the store instead of replacing it")),
	), handleWriteFile)

	s.AddTool(mcp.NewTool("lisa_activate",
		mcp.WithDescription("Flip a configuration's activation gate"),
		mcp.WithString("config", mcp.Description("Configuration name; empty targets the root configuration")),
		mcp.WithBoolean("active", mcp.Required(), mcp.Description("Desired activation state")),
	), handleActivate)

	return &Server{mcp: s}
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logging.Info(subsystem, "Serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// Listen runs the stdio server until ctx is done or stdin closes. Used by
// the daemon so shutdown can interrupt the session.
func (s *Server) Listen(ctx context.Context) error {
	logging.Info(subsystem, "Serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}
