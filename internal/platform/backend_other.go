//go:build !linux

package platform

// New reports ErrUnsupported; callers fall back to the shell's own
// window geometry.
func New(display string) (Backend, error) {
	return nil, ErrUnsupported
}
