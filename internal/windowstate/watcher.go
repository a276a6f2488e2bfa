package windowstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
)

const DefaultPollInterval = 500 * time.Millisecond

// Handler receives window events. *Tracker implements it.
type Handler interface {
	OnMove(win Window) error
	OnResize(win Window) error
	OnMaximize(win Window) error
	OnUnmaximize(win Window) error
	OnMinimize(win Window) error
	OnRestore(win Window) error
}

// WatcherConfig holds configuration for the watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

type sample struct {
	bounds    platform.Rect
	maximized bool
	minimized bool
}

// Watcher samples a window on a ticker and turns observed changes into
// Handler events. Events from one sample are dispatched in a fixed order:
// minimize/restore, maximize/unmaximize, move, resize. Geometry changes
// are not reported while the window is minimized.
type Watcher struct {
	interval time.Duration
	win      Window
	handler  Handler
	logger   *slog.Logger

	mu   sync.Mutex
	prev *sample
}

// NewWatcher creates a watcher for win.
func NewWatcher(cfg WatcherConfig, win Window, handler Handler) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		interval: interval,
		win:      win,
		handler:  handler,
		logger:   logger,
	}
}

// Run starts the sampling loop. Blocks until context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("window watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("window watcher stopped")
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// PollNow takes a sample immediately and dispatches any changes.
func (w *Watcher) PollNow() {
	w.poll()
}

// Reset forgets the previous sample, so the next poll only records a
// baseline.
func (w *Watcher) Reset() {
	w.mu.Lock()
	w.prev = nil
	w.mu.Unlock()
}

func (w *Watcher) poll() {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("window watcher panic recovered", "error", err)
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()

	bounds, err := w.win.Bounds()
	if err != nil {
		w.logger.Debug("window watcher: failed to read bounds", "error", err)
		return
	}
	cur := sample{
		bounds:    bounds,
		maximized: w.win.IsMaximized(),
		minimized: w.win.IsMinimized(),
	}

	prev := w.prev
	w.prev = &cur
	if prev == nil {
		return
	}

	if cur.minimized != prev.minimized {
		if cur.minimized {
			w.dispatch("minimize", w.handler.OnMinimize)
		} else {
			w.dispatch("restore", w.handler.OnRestore)
		}
	}
	if cur.maximized != prev.maximized {
		if cur.maximized {
			w.dispatch("maximize", w.handler.OnMaximize)
		} else {
			w.dispatch("unmaximize", w.handler.OnUnmaximize)
		}
	}
	if cur.minimized {
		// Keep the last visible geometry as the comparison point.
		cur.bounds = prev.bounds
		return
	}
	if cur.bounds.X != prev.bounds.X || cur.bounds.Y != prev.bounds.Y {
		w.dispatch("move", w.handler.OnMove)
	}
	if cur.bounds.Width != prev.bounds.Width || cur.bounds.Height != prev.bounds.Height {
		w.dispatch("resize", w.handler.OnResize)
	}
}

func (w *Watcher) dispatch(event string, fn func(Window) error) {
	if err := fn(w.win); err != nil {
		w.logger.Error("failed to persist window state", "event", event, "error", err)
	}
}
