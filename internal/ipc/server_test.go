package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/lifecycle"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

type fakeController struct {
	mu      sync.Mutex
	shown   int
	hidden  int
	noTheme bool
}

func (c *fakeController) Show() {
	c.mu.Lock()
	c.shown++
	c.mu.Unlock()
}

func (c *fakeController) Hide() {
	c.mu.Lock()
	c.hidden++
	c.mu.Unlock()
}

func (c *fakeController) Status() lifecycle.Status {
	return lifecycle.Status{Phase: lifecycle.PhaseReady, Visible: true, MinimizeToTray: true}
}

func (c *fakeController) SyncTheme(context.Context) (theme.Result, bool) {
	if c.noTheme {
		return theme.Result{}, false
	}
	return theme.Result{Action: theme.ActionUpdated, Error: ""}, true
}

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *fakeSettings) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = string(data)
	return nil
}

func (s *fakeSettings) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length-limited; t.TempDir can be too deep.
	dir, err := os.MkdirTemp("", "ltf-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, cfg ServerConfig) *Client {
	t.Helper()
	cfg.SocketPath = socketPath(t)
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestServer_ShowHide(t *testing.T) {
	ctrl := &fakeController{}
	client := startServer(t, ServerConfig{Controller: ctrl})

	if err := client.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := client.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.shown != 1 || ctrl.hidden != 1 {
		t.Fatalf("shown=%d hidden=%d", ctrl.shown, ctrl.hidden)
	}
}

func TestServer_Status(t *testing.T) {
	client := startServer(t, ServerConfig{Controller: &fakeController{}})

	st, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Phase != lifecycle.PhaseReady || !st.Visible || st.PID != os.Getpid() {
		t.Fatalf("unexpected status %+v", st)
	}
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestServer_SyncTheme(t *testing.T) {
	client := startServer(t, ServerConfig{Controller: &fakeController{}})
	res, err := client.SyncTheme()
	if err != nil {
		t.Fatalf("SyncTheme: %v", err)
	}
	if res.Action != theme.ActionUpdated {
		t.Fatalf("Action = %s", res.Action)
	}

	client = startServer(t, ServerConfig{Controller: &fakeController{noTheme: true}})
	if _, err := client.SyncTheme(); err == nil {
		t.Fatal("expected error when theme sync is not configured")
	}
}

func TestServer_Displays(t *testing.T) {
	displays := platform.StaticDisplays{{ID: "DP-1", Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}}}
	client := startServer(t, ServerConfig{Controller: &fakeController{}, Displays: displays})

	data, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("GetDisplays: %v", err)
	}
	if len(data.Displays) != 1 || data.Displays[0].ID != "DP-1" {
		t.Fatalf("displays = %+v", data.Displays)
	}

	client = startServer(t, ServerConfig{Controller: &fakeController{}})
	if _, err := client.GetDisplays(); err == nil {
		t.Fatal("expected error without a display source")
	}
}

func TestServer_SetSetting(t *testing.T) {
	store := &fakeSettings{}
	client := startServer(t, ServerConfig{
		Controller: &fakeController{},
		Settings:   store,
		ValidateSetting: func(key string, _ json.RawMessage) error {
			if key != "spellcheck" {
				return fmt.Errorf("unknown setting %q", key)
			}
			return nil
		},
	})

	if err := client.SetSetting("spellcheck", json.RawMessage(`false`)); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if got := store.get("spellcheck"); got != "false" {
		t.Fatalf("stored = %q", got)
	}

	if err := client.SetSetting("bogus", json.RawMessage(`1`)); err == nil {
		t.Fatal("expected unknown setting to be rejected")
	}
	if err := client.SetSetting("spellcheck", json.RawMessage(`{nope`)); err == nil {
		t.Fatal("expected invalid JSON to be rejected")
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	client := startServer(t, ServerConfig{Controller: &fakeController{}})
	if _, err := client.sendRequest(&Request{Command: "FLY"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestClient_NotRunning(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Show(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Show error = %v, want ErrNotRunning", err)
	}
}
