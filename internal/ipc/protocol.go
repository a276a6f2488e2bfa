package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/lifecycle"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandShow        CommandType = "SHOW"
	CommandHide        CommandType = "HIDE"
	CommandGetStatus   CommandType = "STATUS"
	CommandSyncTheme   CommandType = "SYNC_THEME"
	CommandGetDisplays CommandType = "GET_DISPLAYS"
	CommandSetSetting  CommandType = "SET_SETTING"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	lifecycle.Status
	PID           int   `json:"pid"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []platform.Display `json:"displays"`
}

// SetSettingPayload is the payload for SET_SETTING.
type SetSettingPayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
