package mcp

import (
	"context"

	"github.com/friendo-bot/friendo/kernel/command"
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/friendo-bot/friendo/kernel/publish"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FriendoMCPServer exposes the four chat intents as MCP tools, plus the
// current display topic as a resource. It is the chat-facing command
// boundary; the handlers behind it never let an error escape, so every tool
// call produces a reply.
type FriendoMCPServer struct {
	server   *server.MCPServer
	handlers *command.Handlers
	mgr      *model.Manager
}

func NewFriendoMCPServer(handlers *command.Handlers, mgr *model.Manager) *FriendoMCPServer {
	srv := server.NewMCPServer(
		"Friendo Server Controller",
		"v1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	fs := &FriendoMCPServer{
		server:   srv,
		handlers: handlers,
		mgr:      mgr,
	}

	fs.registerTools()
	fs.registerResources()

	return fs
}

func (fs *FriendoMCPServer) ServeStdio() error {
	return server.ServeStdio(fs.server)
}

func (fs *FriendoMCPServer) registerTools() {
	fs.server.AddTool(mcp.NewTool("server_status",
		mcp.WithDescription("Report whether the game server instance is starting up, running, shutting down or stopped"),
	), fs.statusHandler)

	fs.server.AddTool(mcp.NewTool("server_ip",
		mcp.WithDescription("Report the public IP of the game server while it is running"),
	), fs.ipHandler)

	fs.server.AddTool(mcp.NewTool("spinup",
		mcp.WithDescription("Start the game server instance if it is stopped"),
	), fs.spinupHandler)

	fs.server.AddTool(mcp.NewTool("spindown",
		mcp.WithDescription("Stop the game server instance if it is running"),
	), fs.spindownHandler)
}

func (fs *FriendoMCPServer) registerResources() {
	resource := mcp.NewResource("friendo://topic", "Current Topic",
		mcp.WithResourceDescription("The channel topic derived on the last reconcile tick"),
		mcp.WithMIMEType("text/plain"),
	)
	fs.server.AddResource(resource, fs.topicHandler)
}

func (fs *FriendoMCPServer) statusHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fs.handlers.Status(ctx)), nil
}

func (fs *FriendoMCPServer) ipHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fs.handlers.Address(ctx)), nil
}

func (fs *FriendoMCPServer) spinupHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fs.handlers.Spinup(ctx)), nil
}

func (fs *FriendoMCPServer) spindownHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fs.handlers.Spindown(ctx)), nil
}

func (fs *FriendoMCPServer) topicHandler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := fs.mgr.Status()

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "friendo://topic",
			MIMEType: "text/plain",
			Text:     publish.Render(status),
		},
	}, nil
}
