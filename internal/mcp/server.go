// Package mcp exposes the application's status, window state, settings and
// theme sync as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

const (
	ServerName    = "lowtaperfadecord"
	ServerVersion = "0.1.0"
)

// AppClient talks to the running application.
type AppClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	SyncTheme() (*theme.Result, error)
	SetSetting(key string, value json.RawMessage) error
}

// Deps wires the server. App is used whenever the application is running;
// the remaining fields are the on-disk fallbacks.
type Deps struct {
	App          AppClient
	OpenSettings func() (*settings.Store, error)
	OpenState    func() (*settings.Store, error)
	// SyncTheme runs a theme sync in this process.
	SyncTheme func(ctx context.Context) theme.Result
	// Displays is consulted when the application is not running.
	Displays      platform.DisplaySource
	DefaultWidth  int
	DefaultHeight int
	Logger        *slog.Logger
}

// Server is the MCP server.
type Server struct {
	mcpServer *mcpsdk.Server
	deps      Deps
	logger    *slog.Logger
}

// NewServer creates a server with all tools registered.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		deps:   deps,
		logger: logger.With("component", "mcp"),
	}

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
		Name:        "get_status",
		Description: "Report whether lowtaperfadecord is running, its startup phase, window visibility, close-to-tray and spell check settings, and the last theme sync result.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_state",
		Description: "Return the persisted window bounds, display id and maximized/minimized flags, plus the size and position the window would be created with given the displays attached right now.",
	}, s.handleGetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_settings",
		Description: "List every user setting with its effective value (stored or default).",
	}, s.handleListSettings)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_setting",
		Description: "Change a user setting. When the application is running the change is applied live; otherwise it is written to settings.json and takes effect on next launch.",
	}, s.handleSetSetting)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sync_theme",
		Description: "Compare the cached theme with the remote copy and download it when missing or changed. Runs inside the application when it is running.",
	}, s.handleSyncTheme)
}
