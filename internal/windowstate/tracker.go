package windowstate

import (
	"fmt"
	"log/slog"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
)

// Window is the live window the tracker reads from.
type Window interface {
	Bounds() (platform.Rect, error)
	IsMaximized() bool
	IsMinimized() bool
}

// Tracker persists window geometry and flags as window events arrive. Every
// call is an independent overwrite of the stored values. Store failures are
// returned to the caller.
type Tracker struct {
	store    Store
	displays platform.DisplaySource
	logger   *slog.Logger
}

// NewTracker creates a tracker writing to store. displays may be nil, in
// which case no display id is recorded.
func NewTracker(store Store, displays platform.DisplaySource, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, displays: displays, logger: logger}
}

// OnMove persists bounds and display affinity.
func (t *Tracker) OnMove(win Window) error {
	return t.saveBounds(win)
}

// OnResize persists bounds and display affinity.
func (t *Tracker) OnResize(win Window) error {
	return t.saveBounds(win)
}

// OnMaximize persists the window flags.
func (t *Tracker) OnMaximize(win Window) error {
	return t.saveFlags(win)
}

// OnUnmaximize persists the window flags.
func (t *Tracker) OnUnmaximize(win Window) error {
	return t.saveFlags(win)
}

// OnMinimize persists the window flags.
func (t *Tracker) OnMinimize(win Window) error {
	return t.saveFlags(win)
}

// OnRestore persists the window flags.
func (t *Tracker) OnRestore(win Window) error {
	return t.saveFlags(win)
}

func (t *Tracker) saveBounds(win Window) error {
	rect, err := win.Bounds()
	if err != nil {
		return fmt.Errorf("failed to read window bounds: %w", err)
	}

	return t.store.SetMany(map[string]any{
		KeyWindowBounds: BoundsFromRect(rect),
		KeyDisplayID:    t.displayFor(rect),
	})
}

func (t *Tracker) saveFlags(win Window) error {
	return t.store.SetMany(map[string]any{
		KeyMaximized: win.IsMaximized(),
		KeyMinimized: win.IsMinimized(),
	})
}

func (t *Tracker) displayFor(rect platform.Rect) string {
	if t.displays == nil {
		return ""
	}
	displays, err := t.displays.Displays()
	if err != nil {
		t.logger.Warn("failed to enumerate displays", "error", err)
		return ""
	}
	d, ok := platform.MatchDisplay(displays, rect)
	if !ok {
		return ""
	}
	return d.ID
}
