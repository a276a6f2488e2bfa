package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. Name is the RandR output name
// (e.g. "HDMI-1"), which stays stable across reboots and reconnects.
type Monitor struct {
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int

	// Work area clipped to this monitor. Equal to the full geometry when
	// the window manager does not publish _NET_WORKAREA.
	WorkX      int
	WorkY      int
	WorkWidth  int
	WorkHeight int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		output := crtcInfo.Outputs[0]
		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		m := Monitor{
			Name:    name,
			Primary: primary != 0 && output == primary,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
		}
		m.WorkX, m.WorkY, m.WorkWidth, m.WorkHeight = m.X, m.Y, m.Width, m.Height
		monitors = append(monitors, m)
	}

	c.applyWorkArea(monitors)
	return monitors, nil
}

// applyWorkArea clips each monitor's work area to _NET_WORKAREA for the
// current desktop.
func (c *Connection) applyWorkArea(monitors []Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	for i := range monitors {
		m := &monitors[i]
		isect := intersectionSize(
			m.X, m.Y, m.X+m.Width, m.Y+m.Height,
			int(wa.X), int(wa.Y), int(wa.X)+int(wa.Width), int(wa.Y)+int(wa.Height),
		)
		if isect.w == 0 || isect.h == 0 {
			continue
		}
		m.WorkX = max(m.X, int(wa.X))
		m.WorkY = max(m.Y, int(wa.Y))
		m.WorkWidth = isect.w
		m.WorkHeight = isect.h
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
