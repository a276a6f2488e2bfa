package windowstate

import "github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"

// Default window size used on first run.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Size is a window size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Options describe how to construct the main window.
type Options struct {
	X         *int `json:"x,omitempty"`
	Y         *int `json:"y,omitempty"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Maximized bool `json:"maximized,omitempty"`
}

// HasPosition reports whether the options pin the window position.
func (o Options) HasPosition() bool {
	return o.X != nil && o.Y != nil
}

// InitialOptions computes window construction options from persisted state.
//
// A stored position is honoured only when the display it was captured on is
// currently attached; otherwise only the size is restored. A missing size
// falls back to defaults.
func InitialOptions(state State, displays []platform.Display, defaults Size) Options {
	if defaults.Width <= 0 || defaults.Height <= 0 {
		defaults = Size{Width: DefaultWidth, Height: DefaultHeight}
	}

	opts := Options{
		Width:     defaults.Width,
		Height:    defaults.Height,
		Maximized: state.Maximized,
	}

	b := state.Bounds
	if b == nil {
		return opts
	}
	if b.Width > 0 && b.Height > 0 {
		opts.Width = b.Width
		opts.Height = b.Height
	}
	if !b.HasPosition() {
		return opts
	}
	if _, ok := platform.FindDisplay(displays, state.DisplayID); !ok {
		return opts
	}

	x, y := *b.X, *b.Y
	opts.X = &x
	opts.Y = &y
	return opts
}
