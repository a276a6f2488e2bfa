package theme

import (
	"context"
	"fmt"
	"slices"
)

// Client reads and writes the embedded client's enabled theme list.
type Client interface {
	EnabledThemes(ctx context.Context) ([]string, error)
	SetEnabledThemes(ctx context.Context, themes []string) error
}

// Prepend returns themes with name first. When name is already present the
// list is returned unchanged and false is reported.
func Prepend(themes []string, name string) ([]string, bool) {
	if slices.Contains(themes, name) {
		return themes, false
	}
	out := make([]string, 0, len(themes)+1)
	out = append(out, name)
	out = append(out, themes...)
	return out, true
}

// Enable makes name an enabled theme in the client. It reports whether the
// list was changed.
func Enable(ctx context.Context, client Client, name string) (bool, error) {
	current, err := client.EnabledThemes(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read enabled themes: %w", err)
	}

	next, changed := Prepend(current, name)
	if !changed {
		return false, nil
	}
	if err := client.SetEnabledThemes(ctx, next); err != nil {
		return false, fmt.Errorf("failed to enable theme %s: %w", name, err)
	}
	return true, nil
}
