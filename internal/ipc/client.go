package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/runtimepath"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

// ErrNotRunning is wrapped by client errors when no instance is listening.
var ErrNotRunning = errors.New("lowtaperfadecord is not running")

// Client handles IPC communication with the running application
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// WithTimeout returns a copy of the client using timeout per request.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	cp := *c
	cp.timeout = timeout
	return &cp
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	if c.socketPath == "" {
		return nil, ErrNotRunning
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("application error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType) error {
	_, err := c.sendRequest(&Request{Command: cmd})
	return err
}

// Show asks the running instance to show its window.
func (c *Client) Show() error {
	return c.send(CommandShow)
}

// Hide asks the running instance to hide its window.
func (c *Client) Hide() error {
	return c.send(CommandHide)
}

// GetStatus retrieves application status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// SyncTheme runs a theme sync in the running instance.
func (c *Client) SyncTheme() (*theme.Result, error) {
	resp, err := c.sendRequest(&Request{Command: CommandSyncTheme})
	if err != nil {
		return nil, err
	}

	var res theme.Result
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse theme result: %w", err)
	}
	return &res, nil
}

// GetDisplays retrieves the displays seen by the running instance.
func (c *Client) GetDisplays() (*DisplaysData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetDisplays})
	if err != nil {
		return nil, err
	}

	var data DisplaysData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}
	return &data, nil
}

// SetSetting writes a setting through the running instance so listeners
// fire there.
func (c *Client) SetSetting(key string, value json.RawMessage) error {
	payload, err := json.Marshal(SetSettingPayload{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal setting payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandSetSetting, Payload: payload})
	return err
}

// Ping checks if the application is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
