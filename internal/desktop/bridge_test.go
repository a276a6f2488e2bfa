package desktop

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// fakePage answers bridge events the way the injected script does.
type fakePage struct {
	mu      sync.Mutex
	themes  []string
	silent  bool
	garbage bool
	onces   map[string][]func(data ...any)
	emitted []string
}

func (p *fakePage) Emit(name string, data ...any) {
	p.mu.Lock()
	p.emitted = append(p.emitted, name)
	if name == EventThemesSet && len(data) > 0 {
		if themes, ok := data[0].([]string); ok {
			p.themes = slices.Clone(themes)
		}
	}
	silent, garbage := p.silent, p.garbage
	reply := make([]any, 0, len(p.themes))
	for _, t := range p.themes {
		reply = append(reply, t)
	}
	p.mu.Unlock()

	if silent || (name != EventThemesGet && name != EventThemesSet) {
		return
	}
	if garbage {
		p.fire(EventThemesList, map[string]any{"nope": true})
		return
	}
	// The page delivers arrays as []any.
	p.fire(EventThemesList, reply)
}

func (p *fakePage) fire(name string, data ...any) {
	p.mu.Lock()
	fns := p.onces[name]
	delete(p.onces, name)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(data...)
	}
}

func (p *fakePage) Once(name string, fn func(data ...any)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onces == nil {
		p.onces = make(map[string][]func(data ...any))
	}
	p.onces[name] = append(p.onces[name], fn)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.onces, name)
	}
}

func TestThemeBridge_GetAndSet(t *testing.T) {
	page := &fakePage{themes: []string{"other.theme.css"}}
	bridge := NewThemeBridge(page, time.Second)
	ctx := context.Background()

	got, err := bridge.EnabledThemes(ctx)
	if err != nil {
		t.Fatalf("EnabledThemes: %v", err)
	}
	if !slices.Equal(got, []string{"other.theme.css"}) {
		t.Fatalf("EnabledThemes = %v", got)
	}

	want := []string{"lowtaperfadecord.theme.css", "other.theme.css"}
	if err := bridge.SetEnabledThemes(ctx, want); err != nil {
		t.Fatalf("SetEnabledThemes: %v", err)
	}
	got, err = bridge.EnabledThemes(ctx)
	if err != nil {
		t.Fatalf("EnabledThemes: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("EnabledThemes = %v, want %v", got, want)
	}
}

func TestThemeBridge_EmptyList(t *testing.T) {
	bridge := NewThemeBridge(&fakePage{}, time.Second)

	got, err := bridge.EnabledThemes(context.Background())
	if err != nil {
		t.Fatalf("EnabledThemes: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestThemeBridge_Timeout(t *testing.T) {
	bridge := NewThemeBridge(&fakePage{silent: true}, 20*time.Millisecond)

	_, err := bridge.EnabledThemes(context.Background())
	if !errors.Is(err, ErrBridgeTimeout) {
		t.Fatalf("expected ErrBridgeTimeout, got %v", err)
	}
}

func TestThemeBridge_ContextCancelled(t *testing.T) {
	bridge := NewThemeBridge(&fakePage{silent: true}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bridge.EnabledThemes(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestThemeBridge_InvalidReply(t *testing.T) {
	bridge := NewThemeBridge(&fakePage{garbage: true}, time.Second)

	if _, err := bridge.EnabledThemes(context.Background()); err == nil {
		t.Fatal("expected error for invalid reply")
	}
}

func TestDecodeThemes(t *testing.T) {
	tests := []struct {
		name    string
		data    []any
		want    []string
		wantErr bool
	}{
		{name: "no data", data: nil, want: []string{}},
		{name: "null", data: []any{nil}, want: []string{}},
		{name: "strings", data: []any{[]string{"a", "b"}}, want: []string{"a", "b"}},
		{name: "any slice", data: []any{[]any{"a"}}, want: []string{"a"}},
		{name: "mixed", data: []any{[]any{"a", 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeThemes(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeThemes: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("decodeThemes = %v, want %v", got, tt.want)
			}
		})
	}
}
