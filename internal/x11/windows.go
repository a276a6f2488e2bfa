package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window's outer rectangle in root coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FindWindowByPID returns the first normal top-level client owned by pid.
func (c *Connection) FindWindowByPID(pid int) (xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to list clients: %w", err)
	}

	for _, windowID := range clients {
		p, err := ewmh.WmPidGet(c.XUtil, windowID)
		if err != nil || int(p) != pid {
			continue
		}
		if !c.IsNormalWindow(windowID) {
			continue
		}
		return windowID, nil
	}
	return 0, fmt.Errorf("no window found for pid %d", pid)
}

// WindowGeometry returns the client area of a window translated to root
// coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// A maximized window is restored first; the window manager ignores moves
// of maximized windows.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if err := c.unmaximize(windowID); err != nil {
		return err
	}

	// EWMH first for window manager cooperation, raw configure as fallback.
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// wmStateRemove is the _NET_WM_STATE client message action that clears a state.
const wmStateRemove = 0

func (c *Connection) unmaximize(windowID xproto.Window) error {
	for _, state := range c.maximizedStates(windowID) {
		if err := ewmh.WmStateReq(c.XUtil, windowID, wmStateRemove, state); err != nil {
			return fmt.Errorf("failed to remove %s: %w", state, err)
		}
	}
	return nil
}

func (c *Connection) maximizedStates(windowID xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	return filterMaximized(states)
}

// filterMaximized returns the maximized atoms present in states.
func filterMaximized(states []string) []string {
	var out []string
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			out = append(out, state)
		}
	}
	return out
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}
