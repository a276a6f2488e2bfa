package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultBridgeTimeout bounds a round trip to the page.
const DefaultBridgeTimeout = 10 * time.Second

// ErrBridgeTimeout is returned when the page does not answer in time.
var ErrBridgeTimeout = errors.New("no answer from the page")

// ThemeBridge reads and writes the enabled theme list kept by the injected
// bridge script. Every request is answered by a themes:list event carrying
// the list after the request was applied.
type ThemeBridge struct {
	bus     EventBus
	timeout time.Duration

	mu sync.Mutex
}

// NewThemeBridge creates a bridge over bus. A zero timeout uses
// DefaultBridgeTimeout.
func NewThemeBridge(bus EventBus, timeout time.Duration) *ThemeBridge {
	if timeout <= 0 {
		timeout = DefaultBridgeTimeout
	}
	return &ThemeBridge{bus: bus, timeout: timeout}
}

// EnabledThemes returns the enabled themes in order.
func (b *ThemeBridge) EnabledThemes(ctx context.Context) ([]string, error) {
	return b.request(ctx, EventThemesGet)
}

// SetEnabledThemes replaces the enabled theme list.
func (b *ThemeBridge) SetEnabledThemes(ctx context.Context, themes []string) error {
	got, err := b.request(ctx, EventThemesSet, themes)
	if err != nil {
		return err
	}
	if !slices.Equal(got, themes) {
		return fmt.Errorf("page reported themes %v after setting %v", got, themes)
	}
	return nil
}

type listReply struct {
	themes []string
	err    error
}

func (b *ThemeBridge) request(ctx context.Context, event string, data ...any) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	replies := make(chan listReply, 1)
	cancel := b.bus.Once(EventThemesList, func(data ...any) {
		themes, err := decodeThemes(data)
		select {
		case replies <- listReply{themes: themes, err: err}:
		default:
		}
	})
	defer cancel()

	b.bus.Emit(event, data...)

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case r := <-replies:
		return r.themes, r.err
	case <-timer.C:
		return nil, fmt.Errorf("%s: %w", event, ErrBridgeTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// decodeThemes accepts whatever the event runtime delivered for a string
// array: []string from Go emitters, []any from the page.
func decodeThemes(data []any) ([]string, error) {
	if len(data) == 0 || data[0] == nil {
		return []string{}, nil
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		return nil, fmt.Errorf("failed to encode theme list: %w", err)
	}
	var themes []string
	if err := json.Unmarshal(raw, &themes); err != nil {
		return nil, fmt.Errorf("page sent an invalid theme list: %w", err)
	}
	if themes == nil {
		themes = []string{}
	}
	return themes, nil
}
