// Package platform models attached displays and the window-system
// operations used to find, measure and place the application window.
package platform

import "errors"

// ErrUnsupported is returned by New on platforms without a window backend.
var ErrUnsupported = errors.New("window backend not supported on this platform")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Display describes a physical display and its usable work area. ID is
// opaque to callers and only compared for equality.
type Display struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary,omitempty"`
	Bounds  Rect   `json:"bounds"`
	Usable  Rect   `json:"usable"`
}

// DisplaySource enumerates the displays currently attached.
type DisplaySource interface {
	Displays() ([]Display, error)
}

// Backend abstracts the window-system operations needed to track and
// restore a single application window.
type Backend interface {
	DisplaySource
	FindWindowByPID(pid int) (WindowID, error)
	WindowBounds(windowID WindowID) (Rect, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Close()
}
