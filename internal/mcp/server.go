// Package mcp exposes the drop-down controls as Model Context Protocol tools
// served over stdio. Every tool is a thin call into the running daemon.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/termdrop/internal/ipc"
)

const (
	ServerName    = "termdrop"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools need.
type DaemonClient interface {
	Toggle() error
	Show() error
	Hide() error
	Track(windowID uint32) (*ipc.TrackData, error)
	Untrack() error
	SetEdgeTrigger(enabled *bool) (bool, error)
	GetStatus() (*ipc.StatusData, error)
}

var _ DaemonClient = (*ipc.Client)(nil)

// Server is the MCP server for driving the termdrop daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
}

// NewServer creates an MCP server that forwards tool calls to client.
func NewServer(client DaemonClient) *Server {
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_window",
		Description: "Slide the tracked drop-down window in if it is hidden, or out if it is visible.",
	}, s.handleToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_window",
		Description: "Slide the tracked drop-down window in. Does nothing when it is already visible.",
	}, s.handleShow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_window",
		Description: "Slide the tracked drop-down window out of view. Does nothing when it is already hidden.",
	}, s.handleHide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "track_window",
		Description: "Start controlling a window as the drop-down. Tracks the focused window unless window_id is given. Any previously tracked window is restored first.",
	}, s.handleTrack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "untrack_window",
		Description: "Stop controlling the tracked window and put it back where it was when tracking started.",
	}, s.handleUntrack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the daemon state: tracked window, visibility, slide direction, bounds and edge trigger phase.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_edge_trigger",
		Description: "Enable or disable showing the window when the cursor touches its screen edge. Omit enabled to flip the current setting. The choice is saved to the config file.",
	}, s.handleSetEdgeTrigger)
}
