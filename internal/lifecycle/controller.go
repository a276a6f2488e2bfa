// Package lifecycle drives the main window from splash to ready and owns
// close-to-tray and settings reactivity.
package lifecycle

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

// Phase is the controller's position in the startup sequence.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseShutdown Phase = "shutdown"
)

// Shell is the browser window the controller drives.
type Shell interface {
	ShowSplash(ctx context.Context)
	Place(ctx context.Context, opts windowstate.Options)
	LoadApp(ctx context.Context) error
	DismissSplash(ctx context.Context)
	Show(ctx context.Context)
	Hide(ctx context.Context)
	Minimize(ctx context.Context)
	Quit(ctx context.Context)
	SetSpellcheck(ctx context.Context, enabled bool, languages []string)
}

// Settings is the read side of the user settings store.
type Settings interface {
	Bool(key string) bool
	Strings(key string) []string
	OnChange(key string, fn settings.Listener) func()
}

// ThemeSyncer runs a theme sync pass.
type ThemeSyncer interface {
	Sync(ctx context.Context) theme.Result
	Last() (theme.Result, bool)
}

// PayloadEnsurer makes sure the client payload is on disk.
type PayloadEnsurer interface {
	Ensure(ctx context.Context) (bool, error)
}

// Watcher samples window geometry until its context ends.
type Watcher interface {
	Run(ctx context.Context)
	PollNow()
}

// Config wires the controller's collaborators. Theme, Payload and Watcher
// are optional.
type Config struct {
	Shell    Shell
	Settings Settings
	Theme    ThemeSyncer
	Payload  PayloadEnsurer
	Watcher  Watcher
	Options  windowstate.Options
	Logger   *slog.Logger
}

// Status is a point-in-time view of the controller.
type Status struct {
	Phase          Phase         `json:"phase"`
	Visible        bool          `json:"visible"`
	MinimizeToTray bool          `json:"minimize_to_tray"`
	Spellcheck     bool          `json:"spellcheck"`
	Languages      []string      `json:"spellcheck_languages,omitempty"`
	Theme          *theme.Result `json:"theme,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
}

// Controller reacts to shell callbacks. All exported methods are safe for
// concurrent use.
type Controller struct {
	shell    Shell
	settings Settings
	theme    ThemeSyncer
	payload  PayloadEnsurer
	watcher  Watcher
	opts     windowstate.Options
	logger   *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	phase       Phase
	visible     bool
	quitting    bool
	startedAt   time.Time
	stopWatch   context.CancelFunc
	unsubscribe []func()

	themeOnce sync.Once
	themeDone chan struct{}
	loaded    chan struct{}
}

// New creates a controller in the starting phase.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		shell:     cfg.Shell,
		settings:  cfg.Settings,
		theme:     cfg.Theme,
		payload:   cfg.Payload,
		watcher:   cfg.Watcher,
		opts:      cfg.Options,
		logger:    logger.With("component", "lifecycle"),
		phase:     PhaseStarting,
		themeDone: make(chan struct{}),
		loaded:    make(chan struct{}),
	}
}

// Startup is called once the shell exists. It shows the splash surface and
// subscribes to settings changes.
func (c *Controller) Startup(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.startedAt = time.Now()
	c.visible = true
	c.mu.Unlock()

	c.shell.ShowSplash(ctx)
	c.subscribe()
}

// DomReady is called every time a page finishes loading. The first call is
// the splash page: the window is placed and the application is loaded. The
// next call is the application itself.
func (c *Controller) DomReady(ctx context.Context) {
	c.mu.Lock()
	phase := c.phase
	switch phase {
	case PhaseStarting:
		c.phase = PhaseLoading
	case PhaseLoading:
		c.phase = PhaseReady
	}
	c.mu.Unlock()

	switch phase {
	case PhaseStarting:
		c.shell.Place(ctx, c.opts)
		c.startWatcher(ctx)
		go c.loadApp(ctx)
	case PhaseLoading:
		c.onAppReady(ctx)
	case PhaseReady:
		c.logger.Debug("page reloaded")
		c.applySpellcheck(ctx)
	}
}

func (c *Controller) loadApp(ctx context.Context) {
	defer close(c.loaded)

	if c.payload != nil {
		if downloaded, err := c.payload.Ensure(ctx); err != nil {
			c.logger.Warn("client payload unavailable", "error", err)
		} else if downloaded {
			c.logger.Info("client payload downloaded")
		}
	}

	if err := c.shell.LoadApp(ctx); err != nil {
		c.logger.Error("failed to load application", "error", err)
	}
}

func (c *Controller) onAppReady(ctx context.Context) {
	c.logger.Info("application ready")
	c.shell.DismissSplash(ctx)
	c.applySpellcheck(ctx)

	if c.settings.Bool(settings.KeyStartMinimized) {
		if c.settings.Bool(settings.KeyMinimizeToTray) {
			c.Hide()
		} else {
			c.shell.Minimize(ctx)
		}
	}

	c.themeOnce.Do(func() {
		if c.theme == nil {
			close(c.themeDone)
			return
		}
		go func() {
			defer close(c.themeDone)
			res := c.theme.Sync(ctx)
			c.logger.Info("theme sync finished", "action", res.Action)
		}()
	})
}

func (c *Controller) startWatcher(ctx context.Context) {
	if c.watcher == nil {
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.stopWatch = cancel
	c.mu.Unlock()

	c.watcher.PollNow()
	go c.watcher.Run(watchCtx)
}

func (c *Controller) subscribe() {
	onSpellcheck := func(string, json.RawMessage) {
		c.applySpellcheck(c.context())
	}
	onTray := func(string, json.RawMessage) {
		c.logger.Info("close behaviour changed", "minimize_to_tray", c.settings.Bool(settings.KeyMinimizeToTray))
	}

	unsubs := []func(){
		c.settings.OnChange(settings.KeySpellcheck, onSpellcheck),
		c.settings.OnChange(settings.KeySpellcheckLanguages, onSpellcheck),
		c.settings.OnChange(settings.KeyMinimizeToTray, onTray),
	}

	c.mu.Lock()
	c.unsubscribe = append(c.unsubscribe, unsubs...)
	c.mu.Unlock()
}

func (c *Controller) applySpellcheck(ctx context.Context) {
	if ctx == nil {
		return
	}
	enabled := c.settings.Bool(settings.KeySpellcheck)
	languages := c.settings.Strings(settings.KeySpellcheckLanguages)
	c.shell.SetSpellcheck(ctx, enabled, languages)
}

// BeforeClose reports whether closing the window should be prevented. With
// minimize-to-tray enabled the window is hidden instead, unless a quit was
// requested.
func (c *Controller) BeforeClose(ctx context.Context) bool {
	c.mu.Lock()
	quitting := c.quitting
	c.mu.Unlock()

	if quitting || !c.settings.Bool(settings.KeyMinimizeToTray) {
		return false
	}

	c.Hide()
	return true
}

// Show brings the window back.
func (c *Controller) Show() {
	ctx := c.context()
	if ctx == nil {
		return
	}
	c.mu.Lock()
	c.visible = true
	c.mu.Unlock()
	c.shell.Show(ctx)
}

// Hide hides the window to the tray.
func (c *Controller) Hide() {
	ctx := c.context()
	if ctx == nil {
		return
	}
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()
	c.shell.Hide(ctx)
}

// Toggle shows a hidden window and hides a visible one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	visible := c.visible
	c.mu.Unlock()

	if visible {
		c.Hide()
	} else {
		c.Show()
	}
}

// Quit exits the application, bypassing close-to-tray.
func (c *Controller) Quit() {
	c.mu.Lock()
	c.quitting = true
	c.mu.Unlock()

	if ctx := c.context(); ctx != nil {
		c.shell.Quit(ctx)
	}
}

// Shutdown releases subscriptions and stops the watcher.
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	c.phase = PhaseShutdown
	unsubs := c.unsubscribe
	c.unsubscribe = nil
	stop := c.stopWatch
	c.stopWatch = nil
	c.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
	if stop != nil {
		stop()
	}
	c.logger.Info("shutdown complete")
}

// SyncTheme runs a theme sync pass now and waits for it.
func (c *Controller) SyncTheme(ctx context.Context) (theme.Result, bool) {
	if c.theme == nil {
		return theme.Result{}, false
	}
	return c.theme.Sync(ctx), true
}

// ThemeDone is closed once the startup theme sync has finished.
func (c *Controller) ThemeDone() <-chan struct{} {
	return c.themeDone
}

// Loaded is closed once the application load has been requested.
func (c *Controller) Loaded() <-chan struct{} {
	return c.loaded
}

// Status returns the current controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	st := Status{
		Phase:     c.phase,
		Visible:   c.visible,
		StartedAt: c.startedAt,
	}
	c.mu.Unlock()

	st.MinimizeToTray = c.settings.Bool(settings.KeyMinimizeToTray)
	st.Spellcheck = c.settings.Bool(settings.KeySpellcheck)
	st.Languages = c.settings.Strings(settings.KeySpellcheckLanguages)
	if c.theme != nil {
		if res, ok := c.theme.Last(); ok {
			st.Theme = &res
		}
	}
	return st
}

func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}
