// Package desktop is the Wails shell: window, application menu, tray icon,
// theme bridge and the proxy that serves the remote application.
package desktop

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

//go:embed all:frontend
var frontend embed.FS

// Lifecycle receives the shell callbacks.
type Lifecycle interface {
	Startup(ctx context.Context)
	DomReady(ctx context.Context)
	BeforeClose(ctx context.Context) bool
	Shutdown(ctx context.Context)
	Show()
	Hide()
	Quit()
}

// SettingsStore is the user settings store as seen by the menu.
type SettingsStore interface {
	Bool(key string) bool
	Set(key string, v any) error
	OnChange(key string, fn settings.Listener) func()
}

// Config wires the desktop application.
type Config struct {
	Title     string
	MinWidth  int
	MinHeight int
	Window    windowstate.Options
	Handler   http.Handler
	Shell     *Shell
	Lifecycle Lifecycle
	Settings  SettingsStore
	Tray      bool
	LogLevel  slog.Level
	Logger    *slog.Logger
	// OnStartup and OnShutdown run around the lifecycle callbacks.
	OnStartup  func(ctx context.Context)
	OnShutdown func(ctx context.Context)
}

// App owns the Wails run.
type App struct {
	cfg    Config
	menu   *AppMenu
	tray   *Tray
	unsubs []func()
	logger *slog.Logger
}

// New prepares the application.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "lowtaperfadecord"
	}
	a := &App{cfg: cfg, logger: logger.With("component", "desktop")}
	a.menu = BuildMenu(a.menuState(), MenuActions{
		Reload:            cfg.Shell.Reload,
		Hide:              cfg.Lifecycle.Hide,
		Quit:              cfg.Lifecycle.Quit,
		SetMinimizeToTray: a.setter(settings.KeyMinimizeToTray),
		SetSpellcheck:     a.setter(settings.KeySpellcheck),
	})
	return a
}

func (a *App) menuState() MenuState {
	return MenuState{
		MinimizeToTray: a.cfg.Settings.Bool(settings.KeyMinimizeToTray),
		Spellcheck:     a.cfg.Settings.Bool(settings.KeySpellcheck),
	}
}

func (a *App) setter(key string) func(bool) {
	return func(enabled bool) {
		if err := a.cfg.Settings.Set(key, enabled); err != nil {
			a.logger.Error("failed to save setting", "key", key, "error", err)
		}
	}
}

// Options builds the Wails options.
func (a *App) Options() (*options.App, error) {
	assets, err := fs.Sub(frontend, "frontend")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded assets: %w", err)
	}

	// With a saved position the shell moves the window first and maximises
	// it afterwards.
	start := options.Normal
	if a.cfg.Window.Maximized && !a.cfg.Window.HasPosition() {
		start = options.Maximised
	}

	return &options.App{
		Title:            a.cfg.Title,
		Width:            a.cfg.Window.Width,
		Height:           a.cfg.Window.Height,
		MinWidth:         a.cfg.MinWidth,
		MinHeight:        a.cfg.MinHeight,
		WindowStartState: start,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: a.cfg.Handler,
		},
		BackgroundColour: &options.RGBA{R: 49, G: 51, B: 56, A: 255},
		Menu:             a.menu.Menu,
		Logger:           NewLogger(a.logger),
		LogLevel:         LogLevel(a.cfg.LogLevel),
		OnStartup:        a.startup,
		OnDomReady:       a.cfg.Lifecycle.DomReady,
		OnBeforeClose:    a.cfg.Lifecycle.BeforeClose,
		OnShutdown:       a.shutdown,
	}, nil
}

// Run blocks until the window is closed or Quit is called.
func (a *App) Run() error {
	opts, err := a.Options()
	if err != nil {
		return err
	}
	if err := wails.Run(opts); err != nil {
		return fmt.Errorf("wails application error: %w", err)
	}
	return nil
}

func (a *App) startup(ctx context.Context) {
	a.cfg.Shell.Bind(ctx)
	if a.cfg.OnStartup != nil {
		a.cfg.OnStartup(ctx)
	}

	refresh := func(string, json.RawMessage) {
		if a.menu.SetState(a.menuState()) {
			runtime.MenuUpdateApplicationMenu(ctx)
		}
	}
	a.unsubs = append(a.unsubs,
		a.cfg.Settings.OnChange(settings.KeyMinimizeToTray, refresh),
		a.cfg.Settings.OnChange(settings.KeySpellcheck, refresh),
	)

	if a.cfg.Tray {
		a.tray = StartTray(TrayActions{
			Show: a.cfg.Lifecycle.Show,
			Hide: a.cfg.Lifecycle.Hide,
			Quit: a.cfg.Lifecycle.Quit,
		}, a.logger)
	}

	a.cfg.Lifecycle.Startup(ctx)
}

func (a *App) shutdown(ctx context.Context) {
	a.cfg.Lifecycle.Shutdown(ctx)
	for _, fn := range a.unsubs {
		fn()
	}
	if a.tray != nil {
		a.tray.Stop()
	}
	if a.cfg.OnShutdown != nil {
		a.cfg.OnShutdown(ctx)
	}
}
