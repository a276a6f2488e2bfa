// Package buildmode reports how the binary was built.
//
// Development builds are produced with the "dev" build tag (the same tag the
// Wails toolchain passes for `wails dev`). They disable the theme
// auto-refresh so a locally edited theme is never overwritten.
package buildmode

// Name returns "dev" or "production".
func Name() string {
	if Dev {
		return "dev"
	}
	return "production"
}
