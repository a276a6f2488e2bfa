package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "lowtaperfadecord"

const (
	DefaultAppURL   = "https://discord.com/app"
	DefaultThemeURL = "https://raw.githubusercontent.com/lowtaperfadecord/lowtaperfadecord/main/themes/lowtaperfadecord.theme.css"
	ThemeFileName   = "lowtaperfadecord.theme.css"
	PayloadFileName = "client.js"
)

// WindowConfig sizes the main window.
type WindowConfig struct {
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
	MinWidth      int `yaml:"min_width"`
	MinHeight     int `yaml:"min_height"`
	// PollIntervalMS is how often window geometry is sampled.
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// ThemeConfig locates the synced CSS theme. An empty URL disables syncing.
type ThemeConfig struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path,omitempty"`
}

// PayloadConfig locates the client script bundle.
type PayloadConfig struct {
	URL  string `yaml:"url,omitempty"`
	Path string `yaml:"path,omitempty"`
}

// FetchConfig controls remote downloads.
type FetchConfig struct {
	RetryMax       int    `yaml:"retry_max"`
	RetryWaitMinMS int    `yaml:"retry_wait_min_ms"`
	RetryWaitMaxMS int    `yaml:"retry_wait_max_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent,omitempty"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// File is an optional log file path; empty logs to stderr only
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// TrayConfig toggles the system tray icon.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the application configuration file.
type Config struct {
	AppURL     string        `yaml:"app_url"`
	Display    string        `yaml:"display,omitempty"`
	XAuthority string        `yaml:"xauthority,omitempty"`
	Window     WindowConfig  `yaml:"window"`
	Theme      ThemeConfig   `yaml:"theme"`
	Payload    PayloadConfig `yaml:"payload"`
	Fetch      FetchConfig   `yaml:"fetch"`
	Logging    LoggingConfig `yaml:"logging"`
	Tray       TrayConfig    `yaml:"tray"`
}

// DefaultConfig returns the built-in configuration. Paths are left empty
// and filled by ResolvePaths.
func DefaultConfig() *Config {
	return &Config{
		AppURL: DefaultAppURL,
		Window: WindowConfig{
			DefaultWidth:   800,
			DefaultHeight:  600,
			MinWidth:       400,
			MinHeight:      300,
			PollIntervalMS: 500,
		},
		Theme: ThemeConfig{
			URL: DefaultThemeURL,
		},
		Fetch: FetchConfig{
			RetryMax:       3,
			RetryWaitMinMS: 1000,
			RetryWaitMaxMS: 10000,
			TimeoutSeconds: 30,
			UserAgent:      appName,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		Tray: TrayConfig{Enabled: true},
	}
}

// DataDir returns the directory holding settings, state and cached assets.
// LOWTAPERFADECORD_HOME overrides the default.
func DataDir() (string, error) {
	if dir := os.Getenv("LOWTAPERFADECORD_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// ResolvePaths fills unset asset paths under dataDir and expands a leading
// "~/" in configured ones.
func (c *Config) ResolvePaths(dataDir string) error {
	var err error
	if c.Theme.Path, err = resolvePath(c.Theme.Path, filepath.Join(dataDir, "themes", ThemeFileName)); err != nil {
		return &ValidationError{Path: "theme.path", Err: err}
	}
	if c.Payload.Path, err = resolvePath(c.Payload.Path, filepath.Join(dataDir, "payload", PayloadFileName)); err != nil {
		return &ValidationError{Path: "payload.path", Err: err}
	}
	if c.Logging.File != "" {
		if c.Logging.File, err = resolvePath(c.Logging.File, ""); err != nil {
			return &ValidationError{Path: "logging.file", Err: err}
		}
	}
	return nil
}

func resolvePath(p, fallback string) (string, error) {
	if p == "" {
		return fallback, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}

// Validate checks value ranges and URLs.
func (c *Config) Validate() error {
	if err := validateURL(c.AppURL, false); err != nil {
		return &ValidationError{Path: "app_url", Err: err}
	}

	w := c.Window
	if w.DefaultWidth <= 0 || w.DefaultHeight <= 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("default_width and default_height must be > 0")}
	}
	if w.MinWidth < 0 || w.MinHeight < 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("min_width and min_height must be >= 0")}
	}
	if w.MinWidth > w.DefaultWidth {
		return &ValidationError{Path: "window.min_width", Err: fmt.Errorf("min_width must not exceed default_width")}
	}
	if w.MinHeight > w.DefaultHeight {
		return &ValidationError{Path: "window.min_height", Err: fmt.Errorf("min_height must not exceed default_height")}
	}
	if w.PollIntervalMS < 50 {
		return &ValidationError{Path: "window.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= 50")}
	}

	if err := validateURL(c.Theme.URL, true); err != nil {
		return &ValidationError{Path: "theme.url", Err: err}
	}
	if c.Theme.Path != "" && filepath.Base(c.Theme.Path) != ThemeFileName {
		return &ValidationError{Path: "theme.path", Err: fmt.Errorf("theme file must be named %s", ThemeFileName)}
	}
	if err := validateURL(c.Payload.URL, true); err != nil {
		return &ValidationError{Path: "payload.url", Err: err}
	}

	f := c.Fetch
	if f.RetryMax < 0 {
		return &ValidationError{Path: "fetch.retry_max", Err: fmt.Errorf("retry_max must be >= 0")}
	}
	if f.RetryWaitMinMS < 0 || f.RetryWaitMaxMS < 0 {
		return &ValidationError{Path: "fetch", Err: fmt.Errorf("retry waits must be >= 0")}
	}
	if f.RetryWaitMaxMS < f.RetryWaitMinMS {
		return &ValidationError{Path: "fetch.retry_wait_max_ms", Err: fmt.Errorf("retry_wait_max_ms must be >= retry_wait_min_ms")}
	}
	if f.TimeoutSeconds <= 0 {
		return &ValidationError{Path: "fetch.timeout_seconds", Err: fmt.Errorf("timeout_seconds must be > 0")}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	return nil
}

func validateURL(raw string, allowEmpty bool) error {
	if raw == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
