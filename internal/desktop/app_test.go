package desktop

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/wailsapp/wails/v2/pkg/options"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

type fakeLifecycle struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeLifecycle) record(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeLifecycle) Startup(context.Context)          { f.record("startup") }
func (f *fakeLifecycle) DomReady(context.Context)         { f.record("domready") }
func (f *fakeLifecycle) BeforeClose(context.Context) bool { f.record("beforeclose"); return true }
func (f *fakeLifecycle) Shutdown(context.Context)         { f.record("shutdown") }
func (f *fakeLifecycle) Show()                            { f.record("show") }
func (f *fakeLifecycle) Hide()                            { f.record("hide") }
func (f *fakeLifecycle) Quit()                            { f.record("quit") }

type memSettings struct {
	mu     sync.Mutex
	values map[string]bool
}

func (m *memSettings) Bool(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *memSettings) Set(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v.(bool)
	return nil
}

func (m *memSettings) OnChange(string, settings.Listener) func() { return func() {} }

func newTestApp(t *testing.T, win windowstate.Options) (*App, *fakeLifecycle, *memSettings) {
	t.Helper()
	shell, err := NewShell(ShellConfig{AppURL: "https://example.com/app"})
	if err != nil {
		t.Fatalf("NewShell: %v", err)
	}
	lc := &fakeLifecycle{}
	store := &memSettings{values: map[string]bool{settings.KeyMinimizeToTray: true}}
	app := New(Config{
		Window:    win,
		MinWidth:  400,
		MinHeight: 300,
		Handler:   http.NotFoundHandler(),
		Shell:     shell,
		Lifecycle: lc,
		Settings:  store,
		LogLevel:  slog.LevelWarn,
	})
	return app, lc, store
}

func TestApp_Options(t *testing.T) {
	app, lc, _ := newTestApp(t, windowstate.Options{Width: 1024, Height: 768, Maximized: true})

	opts, err := app.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Width != 1024 || opts.Height != 768 {
		t.Fatalf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.MinWidth != 400 || opts.MinHeight != 300 {
		t.Fatalf("min size = %dx%d", opts.MinWidth, opts.MinHeight)
	}
	if opts.WindowStartState != options.Maximised {
		t.Fatalf("WindowStartState = %v", opts.WindowStartState)
	}
	if opts.Title != "lowtaperfadecord" {
		t.Fatalf("Title = %q", opts.Title)
	}
	if opts.AssetServer == nil || opts.AssetServer.Handler == nil || opts.AssetServer.Assets == nil {
		t.Fatal("asset server not configured")
	}
	if opts.Menu == nil {
		t.Fatal("menu not configured")
	}

	if !opts.OnBeforeClose(context.Background()) {
		t.Fatal("OnBeforeClose should defer to the lifecycle")
	}
	opts.OnDomReady(context.Background())
	if len(lc.events) != 2 || lc.events[0] != "beforeclose" || lc.events[1] != "domready" {
		t.Fatalf("lifecycle events = %v", lc.events)
	}
}

func TestApp_OptionsNormalStart(t *testing.T) {
	app, _, _ := newTestApp(t, windowstate.Options{Width: 800, Height: 600})

	opts, err := app.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.WindowStartState != options.Normal {
		t.Fatalf("WindowStartState = %v", opts.WindowStartState)
	}
}

func TestApp_OptionsMaximizedWithPositionStartsNormal(t *testing.T) {
	x, y := 1920, 40
	app, _, _ := newTestApp(t, windowstate.Options{Width: 800, Height: 600, X: &x, Y: &y, Maximized: true})

	opts, err := app.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.WindowStartState != options.Normal {
		t.Fatalf("WindowStartState = %v, want Normal so the position is applied before maximising", opts.WindowStartState)
	}
}

func TestApp_EmbeddedSplash(t *testing.T) {
	app, _, _ := newTestApp(t, windowstate.Options{Width: 800, Height: 600})
	opts, err := app.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}

	f, err := opts.AssetServer.Assets.Open("index.html")
	if err != nil {
		t.Fatalf("splash page missing: %v", err)
	}
	f.Close()
}

func TestApp_MenuWritesSettings(t *testing.T) {
	app, lc, store := newTestApp(t, windowstate.Options{Width: 800, Height: 600})

	click(t, app.menu, LabelMinimizeToTray)
	if store.Bool(settings.KeyMinimizeToTray) {
		t.Fatal("expected minimizeToTray to be turned off")
	}
	click(t, app.menu, LabelSpellcheck)
	if !store.Bool(settings.KeySpellcheck) {
		t.Fatal("expected spellcheck to be turned on")
	}

	click(t, app.menu, LabelHide)
	click(t, app.menu, LabelQuit)
	if len(lc.events) != 2 || lc.events[0] != "hide" || lc.events[1] != "quit" {
		t.Fatalf("lifecycle events = %v", lc.events)
	}
}

func TestNewShell_AppPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://discord.com/app", "/app"},
		{"https://example.com", "/"},
		{"https://example.com/a/b?x=1", "/a/b?x=1"},
	}
	for _, tt := range tests {
		s, err := NewShell(ShellConfig{AppURL: tt.url})
		if err != nil {
			t.Fatalf("NewShell(%q): %v", tt.url, err)
		}
		if s.appPath != tt.want {
			t.Errorf("appPath(%q) = %q, want %q", tt.url, s.appPath, tt.want)
		}
		raw, _ := json.Marshal(s.appPath)
		if len(raw) < 2 {
			t.Errorf("bad encoding %s", raw)
		}
	}
}

func TestShell_NotStarted(t *testing.T) {
	s, err := NewShell(ShellConfig{AppURL: "https://example.com/app"})
	if err != nil {
		t.Fatalf("NewShell: %v", err)
	}
	if _, err := s.Bounds(); err == nil {
		t.Fatal("expected error before Bind")
	}
	if s.IsMaximized() || s.IsMinimized() {
		t.Fatal("expected false before Bind")
	}
	s.Reload()
	s.Events().Emit(EventSpellcheck, true)
	s.Events().Once(EventThemesList, func(...any) {})()
}
