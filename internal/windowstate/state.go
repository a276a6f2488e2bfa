// Package windowstate persists the main window's geometry and display
// affinity and computes the options used to recreate it on the next start.
package windowstate

import (
	"fmt"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
)

// Keys in the state store.
const (
	KeyWindowBounds = "windowBounds"
	KeyDisplayID    = "displayid"
	KeyMaximized    = "maximized"
	KeyMinimized    = "minimized"
)

// Bounds is the persisted window rectangle. X and Y are optional; when they
// are nil the window manager picks the position.
type Bounds struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// BoundsFromRect converts a screen rectangle to persisted bounds with a
// position.
func BoundsFromRect(r platform.Rect) Bounds {
	x, y := r.X, r.Y
	return Bounds{X: &x, Y: &y, Width: r.Width, Height: r.Height}
}

// HasPosition reports whether both coordinates are set.
func (b Bounds) HasPosition() bool {
	return b.X != nil && b.Y != nil
}

// State is everything persisted about the window.
type State struct {
	Bounds    *Bounds `json:"windowBounds,omitempty"`
	DisplayID string  `json:"displayid,omitempty"`
	Maximized bool    `json:"maximized"`
	Minimized bool    `json:"minimized"`
}

// Getter reads typed values from a key-value store.
type Getter interface {
	Get(key string, v any) (bool, error)
}

// Store is the subset of the state store the tracker writes to.
type Store interface {
	Getter
	SetMany(values map[string]any) error
}

// Load reads the persisted window state. Missing keys leave zero values.
func Load(store Getter) (State, error) {
	var st State

	var b Bounds
	ok, err := store.Get(KeyWindowBounds, &b)
	if err != nil {
		return State{}, fmt.Errorf("failed to read window bounds: %w", err)
	}
	if ok {
		st.Bounds = &b
	}

	fields := []struct {
		key string
		dst any
	}{
		{KeyDisplayID, &st.DisplayID},
		{KeyMaximized, &st.Maximized},
		{KeyMinimized, &st.Minimized},
	}
	for _, f := range fields {
		if _, err := store.Get(f.key, f.dst); err != nil {
			return State{}, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
	}
	return st, nil
}
