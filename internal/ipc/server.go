package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/lifecycle"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/runtimepath"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

const themeSyncTimeout = 2 * time.Minute

// Controller is the running application as seen by the control socket.
type Controller interface {
	Show()
	Hide()
	Status() lifecycle.Status
	SyncTheme(ctx context.Context) (theme.Result, bool)
}

// SettingsWriter persists a single user setting.
type SettingsWriter interface {
	Set(key string, v any) error
}

// ServerConfig wires the server. Displays and Settings are optional.
type ServerConfig struct {
	SocketPath string
	Controller Controller
	Displays   platform.DisplaySource
	Settings   SettingsWriter
	// ValidateSetting rejects unknown keys and ill-typed values when set.
	ValidateSetting func(key string, value json.RawMessage) error
	Logger       *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	controller   Controller
	displays     platform.DisplaySource
	settings     SettingsWriter
	validate     func(string, json.RawMessage) error
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		socketPath: socketPath,
		controller: cfg.Controller,
		displays:   cfg.Displays,
		settings:   cfg.Settings,
		validate:   cfg.ValidateSetting,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. A stale socket file left by a
// crashed instance is removed first.
func (s *Server) Start() error {
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandShow:
		s.controller.Show()
		return okResponse(nil)
	case CommandHide:
		s.controller.Hide()
		return okResponse(nil)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSyncTheme:
		return s.handleSyncTheme()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandSetSetting:
		return s.handleSetSetting(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	return okResponse(StatusData{
		Status:        s.controller.Status(),
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleSyncTheme() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), themeSyncTimeout)
	defer cancel()

	res, ok := s.controller.SyncTheme(ctx)
	if !ok {
		return NewErrorResponse("theme sync is not configured")
	}
	return okResponse(res)
}

func (s *Server) handleGetDisplays() *Response {
	if s.displays == nil {
		return NewErrorResponse("display enumeration is not available")
	}
	displays, err := s.displays.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}
	return okResponse(DisplaysData{Displays: displays})
}

func (s *Server) handleSetSetting(payload json.RawMessage) *Response {
	if s.settings == nil {
		return NewErrorResponse("settings are not available")
	}

	var req SetSettingPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set_setting payload: %v", err))
	}
	if req.Key == "" {
		return NewErrorResponse("key is required")
	}
	if len(req.Value) == 0 || !json.Valid(req.Value) {
		return NewErrorResponse("value must be valid JSON")
	}
	if s.validate != nil {
		if err := s.validate(req.Key, req.Value); err != nil {
			return NewErrorResponse(err.Error())
		}
	}

	if err := s.settings.Set(req.Key, req.Value); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save setting: %v", err))
	}
	s.logger.Info("setting changed over IPC", "key", req.Key)
	return okResponse(nil)
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
