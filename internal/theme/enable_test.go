package theme

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeClient struct {
	themes  []string
	sets    int
	readErr error
	setErr  error
}

func (c *fakeClient) EnabledThemes(context.Context) ([]string, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return append([]string(nil), c.themes...), nil
}

func (c *fakeClient) SetEnabledThemes(_ context.Context, themes []string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.themes = append([]string(nil), themes...)
	return nil
}

func TestPrepend(t *testing.T) {
	tests := []struct {
		name        string
		themes      []string
		want        []string
		wantChanged bool
	}{
		{"empty", nil, []string{DefaultName}, true},
		{"prepends", []string{"a.css", "b.css"}, []string{DefaultName, "a.css", "b.css"}, true},
		{"already first", []string{DefaultName, "a.css"}, []string{DefaultName, "a.css"}, false},
		{"already later keeps order", []string{"a.css", DefaultName}, []string{"a.css", DefaultName}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Prepend(tt.themes, DefaultName)
			if changed != tt.wantChanged {
				t.Fatalf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Prepend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepend_DoesNotMutateInput(t *testing.T) {
	in := make([]string, 2, 8)
	in[0], in[1] = "a.css", "b.css"
	Prepend(in, DefaultName)
	if in[0] != "a.css" || in[1] != "b.css" {
		t.Fatalf("input modified: %v", in)
	}
}

func TestEnable_Idempotent(t *testing.T) {
	client := &fakeClient{themes: []string{"a.css", "b.css"}}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := Enable(ctx, client, DefaultName); err != nil {
			t.Fatalf("Enable #%d: %v", i+1, err)
		}
	}

	want := []string{DefaultName, "a.css", "b.css"}
	if !reflect.DeepEqual(client.themes, want) {
		t.Fatalf("themes = %v, want %v", client.themes, want)
	}
	if client.sets != 1 {
		t.Fatalf("expected a single write, got %d", client.sets)
	}
}

func TestEnable_Errors(t *testing.T) {
	ctx := context.Background()
	readErr := errors.New("bridge not ready")
	if _, err := Enable(ctx, &fakeClient{readErr: readErr}, DefaultName); !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}

	setErr := errors.New("bridge closed")
	if _, err := Enable(ctx, &fakeClient{setErr: setErr}, DefaultName); !errors.Is(err, setErr) {
		t.Fatalf("expected set error, got %v", err)
	}
}
