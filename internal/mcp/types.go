package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Running        bool   `json:"running"`
	Phase          string `json:"phase,omitempty"`
	Visible        bool   `json:"visible"`
	PID            int    `json:"pid,omitempty"`
	UptimeSeconds  int64  `json:"uptime_seconds,omitempty"`
	MinimizeToTray bool   `json:"minimize_to_tray"`
	Spellcheck     bool   `json:"spellcheck"`
	ThemeAction    string `json:"theme_action,omitempty"`
	ThemeError     string `json:"theme_error,omitempty"`
}

// GetWindowStateInput is the input for the get_window_state tool.
type GetWindowStateInput struct{}

// WindowBounds mirrors the persisted window rectangle.
type WindowBounds struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// WindowStateOutput is the output for the get_window_state tool.
type WindowStateOutput struct {
	Bounds    *WindowBounds `json:"bounds,omitempty"`
	DisplayID string        `json:"display_id,omitempty"`
	Maximized bool          `json:"maximized"`
	Minimized bool          `json:"minimized"`
	// NextLaunch is what the window would be created with now, given the
	// displays currently attached.
	NextLaunch      WindowBounds `json:"next_launch"`
	DisplayAttached bool         `json:"display_attached"`
}

// ListSettingsInput is the input for the list_settings tool.
type ListSettingsInput struct{}

// ListSettingsOutput is the output for the list_settings tool.
type ListSettingsOutput struct {
	Settings map[string]any `json:"settings"`
}

// SetSettingInput is the input for the set_setting tool.
type SetSettingInput struct {
	Key   string `json:"key" jsonschema:"required,Setting key: minimizeToTray, startMinimized, spellcheck or spellcheckLanguages"`
	Value any    `json:"value" jsonschema:"required,New JSON value for the setting"`
}

// SetSettingOutput is the output for the set_setting tool.
type SetSettingOutput struct {
	Key string `json:"key"`
	// Via is "app" when the running application applied the change and
	// "file" when it was written to disk directly.
	Via string `json:"via"`
}

// SyncThemeInput is the input for the sync_theme tool.
type SyncThemeInput struct{}

// SyncThemeOutput is the output for the sync_theme tool.
type SyncThemeOutput struct {
	Action     string `json:"action"`
	LocalHash  string `json:"local_hash,omitempty"`
	RemoteHash string `json:"remote_hash,omitempty"`
	Error      string `json:"error,omitempty"`
	Via        string `json:"via"`
}
