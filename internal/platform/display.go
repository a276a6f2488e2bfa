package platform

// StaticDisplays is a DisplaySource with a fixed display list.
type StaticDisplays []Display

func (s StaticDisplays) Displays() ([]Display, error) {
	out := make([]Display, len(s))
	copy(out, s)
	return out, nil
}

// Intersection returns the overlapping area of a and b, or zero.
func Intersection(a, b Rect) int {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	return (x2 - x1) * (y2 - y1)
}

// MatchDisplay returns the display that contains r: the one with the
// largest intersection, or the nearest one when r is off every screen.
// It reports false only when displays is empty.
func MatchDisplay(displays []Display, r Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}

	best := -1
	bestArea := 0
	for i, d := range displays {
		if area := Intersection(d.Bounds, r); area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best >= 0 {
		return displays[best], true
	}

	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	best = 0
	bestDist := -1
	for i, d := range displays {
		dist := distanceSquared(d.Bounds, cx, cy)
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return displays[best], true
}

// FindDisplay returns the display with the given id.
func FindDisplay(displays []Display, id string) (Display, bool) {
	if id == "" {
		return Display{}, false
	}
	for _, d := range displays {
		if d.ID == id {
			return d, true
		}
	}
	return Display{}, false
}

// distanceSquared is the squared distance from (x, y) to the closest point
// of r.
func distanceSquared(r Rect, x, y int) int {
	dx := 0
	if x < r.X {
		dx = r.X - x
	} else if x >= r.X+r.Width {
		dx = x - (r.X + r.Width - 1)
	}
	dy := 0
	if y < r.Y {
		dy = r.Y - y
	} else if y >= r.Y+r.Height {
		dy = y - (r.Y + r.Height - 1)
	}
	return dx*dx + dy*dy
}
