package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

const (
	viaApp  = "app"
	viaFile = "file"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if s.deps.App != nil {
		st, err := s.deps.App.GetStatus()
		if err == nil {
			out := StatusOutput{
				Running:        true,
				Phase:          string(st.Phase),
				Visible:        st.Visible,
				PID:            st.PID,
				UptimeSeconds:  st.UptimeSeconds,
				MinimizeToTray: st.MinimizeToTray,
				Spellcheck:     st.Spellcheck,
			}
			if st.Theme != nil {
				out.ThemeAction = string(st.Theme.Action)
				out.ThemeError = st.Theme.Error
			}
			return nil, out, nil
		}
		if !errors.Is(err, ipc.ErrNotRunning) {
			return nil, StatusOutput{}, err
		}
	}

	out := StatusOutput{Running: false}
	if store, err := s.openSettings(); err == nil {
		out.MinimizeToTray = store.Bool(settings.KeyMinimizeToTray)
		out.Spellcheck = store.Bool(settings.KeySpellcheck)
	}
	return nil, out, nil
}

func (s *Server) handleGetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWindowStateInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	if s.deps.OpenState == nil {
		return nil, WindowStateOutput{}, fmt.Errorf("window state is not available")
	}
	store, err := s.deps.OpenState()
	if err != nil {
		return nil, WindowStateOutput{}, fmt.Errorf("failed to open state: %w", err)
	}
	st, err := windowstate.Load(store)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}

	displays := s.currentDisplays()
	opts := windowstate.InitialOptions(st, displays, windowstate.Size{
		Width:  s.deps.DefaultWidth,
		Height: s.deps.DefaultHeight,
	})
	_, attached := platform.FindDisplay(displays, st.DisplayID)

	out := WindowStateOutput{
		DisplayID:       st.DisplayID,
		Maximized:       st.Maximized,
		Minimized:       st.Minimized,
		NextLaunch:      WindowBounds{X: opts.X, Y: opts.Y, Width: opts.Width, Height: opts.Height},
		DisplayAttached: attached,
	}
	if st.Bounds != nil {
		out.Bounds = &WindowBounds{X: st.Bounds.X, Y: st.Bounds.Y, Width: st.Bounds.Width, Height: st.Bounds.Height}
	}
	return nil, out, nil
}

func (s *Server) currentDisplays() []platform.Display {
	if s.deps.App != nil {
		if data, err := s.deps.App.GetDisplays(); err == nil {
			return data.Displays
		}
	}
	if s.deps.Displays != nil {
		displays, err := s.deps.Displays.Displays()
		if err == nil {
			return displays
		}
		s.logger.Debug("failed to enumerate displays", "error", err)
	}
	return nil
}

func (s *Server) handleListSettings(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListSettingsInput) (*mcpsdk.CallToolResult, ListSettingsOutput, error) {
	store, err := s.openSettings()
	if err != nil {
		return nil, ListSettingsOutput{}, err
	}

	out := ListSettingsOutput{Settings: make(map[string]any)}
	for key, raw := range store.Snapshot() {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ListSettingsOutput{}, fmt.Errorf("failed to decode setting %q: %w", key, err)
		}
		out.Settings[key] = v
	}
	return nil, out, nil
}

func (s *Server) handleSetSetting(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSettingInput) (*mcpsdk.CallToolResult, SetSettingOutput, error) {
	raw, err := json.Marshal(args.Value)
	if err != nil {
		return nil, SetSettingOutput{}, fmt.Errorf("failed to encode value: %w", err)
	}
	if err := settings.Validate(args.Key, raw); err != nil {
		return nil, SetSettingOutput{}, err
	}

	if s.deps.App != nil {
		err := s.deps.App.SetSetting(args.Key, raw)
		if err == nil {
			s.logger.Info("setting applied in running app", "key", args.Key)
			return nil, SetSettingOutput{Key: args.Key, Via: viaApp}, nil
		}
		if !errors.Is(err, ipc.ErrNotRunning) {
			return nil, SetSettingOutput{}, err
		}
	}

	store, err := s.openSettings()
	if err != nil {
		return nil, SetSettingOutput{}, err
	}
	if err := store.Set(args.Key, json.RawMessage(raw)); err != nil {
		return nil, SetSettingOutput{}, err
	}
	s.logger.Info("setting written to file", "key", args.Key)
	return nil, SetSettingOutput{Key: args.Key, Via: viaFile}, nil
}

func (s *Server) handleSyncTheme(ctx context.Context, _ *mcpsdk.CallToolRequest, _ SyncThemeInput) (*mcpsdk.CallToolResult, SyncThemeOutput, error) {
	if s.deps.App != nil {
		res, err := s.deps.App.SyncTheme()
		if err == nil {
			return nil, SyncThemeOutput{
				Action:     string(res.Action),
				LocalHash:  res.LocalHash,
				RemoteHash: res.RemoteHash,
				Error:      res.Error,
				Via:        viaApp,
			}, nil
		}
		if !errors.Is(err, ipc.ErrNotRunning) {
			return nil, SyncThemeOutput{}, err
		}
	}

	if s.deps.SyncTheme == nil {
		return nil, SyncThemeOutput{}, fmt.Errorf("theme sync is not configured")
	}
	res := s.deps.SyncTheme(ctx)
	return nil, SyncThemeOutput{
		Action:     string(res.Action),
		LocalHash:  res.LocalHash,
		RemoteHash: res.RemoteHash,
		Error:      res.Error,
		Via:        viaFile,
	}, nil
}

func (s *Server) openSettings() (*settings.Store, error) {
	if s.deps.OpenSettings == nil {
		return nil, fmt.Errorf("settings are not available")
	}
	store, err := s.deps.OpenSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}
