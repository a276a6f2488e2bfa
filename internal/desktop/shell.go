package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

// errNotStarted is returned by window queries before the shell has a context.
var errNotStarted = errors.New("window not started")

// Shell drives the Wails window. It is the lifecycle controller's shell and
// the geometry watcher's window.
type Shell struct {
	appPath string
	title   string
	backend platform.Backend
	win     windowRuntime
	events  *runtimeEvents
	logger  *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	native platform.WindowID
	found  bool
}

// ShellConfig configures a Shell. Backend is optional; without it geometry
// comes from the Wails runtime.
type ShellConfig struct {
	AppURL  string
	Title   string
	Backend platform.Backend
	Logger  *slog.Logger
}

// NewShell creates a shell for the application at cfg.AppURL.
func NewShell(cfg ShellConfig) (*Shell, error) {
	u, err := url.Parse(cfg.AppURL)
	if err != nil {
		return nil, fmt.Errorf("invalid app URL %q: %w", cfg.AppURL, err)
	}
	appPath := u.EscapedPath()
	if appPath == "" {
		appPath = "/"
	}
	if u.RawQuery != "" {
		appPath += "?" + u.RawQuery
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	title := cfg.Title
	if title == "" {
		title = "lowtaperfadecord"
	}

	return &Shell{
		appPath: appPath,
		title:   title,
		backend: cfg.Backend,
		win:     wailsWindow{},
		events:  &runtimeEvents{},
		logger:  logger.With("component", "shell"),
	}, nil
}

// Events returns the event bus bound to this shell.
func (s *Shell) Events() EventBus {
	return s.events
}

// Bind attaches the Wails context. It must be called from OnStartup before
// any other method.
func (s *Shell) Bind(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.events.bind(ctx)
}

func (s *Shell) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// ShowSplash shows the window with the embedded splash page.
func (s *Shell) ShowSplash(ctx context.Context) {
	s.win.SetTitle(ctx, s.title)
	s.win.Show(ctx)
}

// Place applies the initial window options. Without a saved position the
// window manager places the window. A saved position is applied before
// maximising so the window maximises on the display it was saved on.
func (s *Shell) Place(ctx context.Context, opts windowstate.Options) {
	s.win.SetSize(ctx, opts.Width, opts.Height)

	if opts.HasPosition() {
		rect := platform.Rect{X: *opts.X, Y: *opts.Y, Width: opts.Width, Height: opts.Height}
		if id, ok := s.nativeWindow(); ok {
			if err := s.backend.MoveResize(id, rect); err != nil {
				s.logger.Warn("failed to restore window position", "error", err)
			}
		} else {
			s.win.SetPosition(ctx, rect.X, rect.Y)
		}
	}

	if opts.Maximized {
		s.win.Maximise(ctx)
	}
}

// LoadApp navigates the window to the proxied application.
func (s *Shell) LoadApp(ctx context.Context) error {
	target, err := json.Marshal(s.appPath)
	if err != nil {
		return fmt.Errorf("failed to encode app path: %w", err)
	}
	s.logger.Info("loading application", "path", s.appPath)
	s.win.ExecJS(ctx, "window.location.replace("+string(target)+");")
	return nil
}

// DismissSplash is called once the application page is ready. The splash
// was replaced by navigation, so only the window needs to be brought up.
func (s *Shell) DismissSplash(ctx context.Context) {
	s.win.SetTitle(ctx, s.title)
	s.win.Show(ctx)
}

func (s *Shell) Show(ctx context.Context) {
	s.win.Show(ctx)
	s.win.Unminimise(ctx)
}

func (s *Shell) Hide(ctx context.Context) {
	s.win.Hide(ctx)
}

func (s *Shell) Minimize(ctx context.Context) {
	s.win.Minimise(ctx)
}

func (s *Shell) Quit(ctx context.Context) {
	s.win.Quit(ctx)
}

// Reload reloads the current page.
func (s *Shell) Reload() {
	if ctx := s.context(); ctx != nil {
		s.win.Reload(ctx)
	}
}

// SetSpellcheck forwards the spell check settings to the page.
func (s *Shell) SetSpellcheck(ctx context.Context, enabled bool, languages []string) {
	if languages == nil {
		languages = []string{}
	}
	s.events.Emit(EventSpellcheck, map[string]any{
		"enabled":   enabled,
		"languages": languages,
	})
}

// Bounds returns the outer window rectangle in screen coordinates.
func (s *Shell) Bounds() (platform.Rect, error) {
	if id, ok := s.nativeWindow(); ok {
		return s.backend.WindowBounds(id)
	}

	ctx := s.context()
	if ctx == nil {
		return platform.Rect{}, errNotStarted
	}
	x, y := s.win.Position(ctx)
	w, h := s.win.Size(ctx)
	return platform.Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (s *Shell) IsMaximized() bool {
	ctx := s.context()
	return ctx != nil && s.win.IsMaximised(ctx)
}

func (s *Shell) IsMinimized() bool {
	ctx := s.context()
	return ctx != nil && s.win.IsMinimised(ctx)
}

// nativeWindow resolves this process's top-level window through the
// platform backend, caching the result.
func (s *Shell) nativeWindow() (platform.WindowID, bool) {
	if s.backend == nil {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.found {
		return s.native, true
	}

	id, err := s.backend.FindWindowByPID(os.Getpid())
	if err != nil {
		s.logger.Debug("native window not found", "error", err)
		return 0, false
	}
	s.native = id
	s.found = true
	return id, true
}
