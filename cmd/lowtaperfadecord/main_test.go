package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

// isolate points data and runtime directories at temp dirs so no running
// instance is found.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LOWTAPERFADECORD_HOME", home)
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("DISPLAY", "")
	return home
}

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		key     string
		in      string
		want    string
		wantErr bool
	}{
		{key: "spellcheck", in: "false", want: "false"},
		{key: "minimizeToTray", in: " true ", want: "true"},
		{key: "spellcheckLanguages", in: `["en-US"]`, want: `["en-US"]`},
		{key: "spellcheckLanguages", in: "en-US, de-DE", want: `["en-US","de-DE"]`},
		{key: "spellcheck", in: "yes", wantErr: true},
		{key: "spellcheck", in: `"true"`, wantErr: true},
		{key: "volume", in: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.in, func(t *testing.T) {
			got, err := parseSettingValue(tt.key, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSettingValue: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunSettingsSetWritesFileWhenNotRunning(t *testing.T) {
	home := isolate(t)

	if rc := runSettings([]string{"set", "spellcheckLanguages", "de-DE,fr-FR"}); rc != 0 {
		t.Fatalf("runSettings set rc=%d, want 0", rc)
	}

	store, err := settings.Open(settings.SettingsPath(home), settings.Defaults())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := store.Strings(settings.KeySpellcheckLanguages); len(got) != 2 || got[0] != "de-DE" || got[1] != "fr-FR" {
		t.Fatalf("languages = %v", got)
	}

	if rc := runSettings([]string{"get", "spellcheckLanguages"}); rc != 0 {
		t.Fatalf("runSettings get rc=%d, want 0", rc)
	}
	if rc := runSettings([]string{"list"}); rc != 0 {
		t.Fatalf("runSettings list rc=%d, want 0", rc)
	}
}

func TestRunSettingsRejectsBadInput(t *testing.T) {
	isolate(t)

	cases := [][]string{
		{},
		{"set", "spellcheck"},
		{"set", "spellcheck", "maybe"},
		{"set", "unknown", "true"},
		{"frobnicate"},
	}
	for _, args := range cases {
		if rc := runSettings(args); rc != 2 {
			t.Errorf("runSettings(%v) rc=%d, want 2", args, rc)
		}
	}
	if rc := runSettings([]string{"get", "unknown"}); rc != 1 {
		t.Errorf("runSettings get unknown rc=%d, want 1", rc)
	}
}

func TestRunConfigValidate(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("app_url: https://example.com/app\nwindow:\n  default_width: 1024\n  default_height: 768\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("app_url: https://example.com/app\nbogus_key: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"validate", "--path", filepath.Join(dir, "missing.yaml")}); rc != 0 {
		t.Fatalf("validate missing rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"print", "--defaults"}); rc != 0 {
		t.Fatalf("print defaults rc=%d, want 0", rc)
	}
}

func TestRunStateShowFirstRun(t *testing.T) {
	isolate(t)

	if rc := runState([]string{"show", "--json"}); rc != 0 {
		t.Fatalf("runState rc=%d, want 0", rc)
	}
}

func TestRunStateShowSavedBounds(t *testing.T) {
	home := isolate(t)

	store, err := settings.Open(settings.StatePath(home), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = store.SetMany(map[string]any{
		windowstate.KeyWindowBounds: windowstate.BoundsFromRect(platform.Rect{X: 5, Y: 6, Width: 1000, Height: 700}),
		windowstate.KeyDisplayID:    "HDMI-1",
	})
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	if rc := runState([]string{"show"}); rc != 0 {
		t.Fatalf("runState rc=%d, want 0", rc)
	}
}

func TestCommandsRequireRunningApp(t *testing.T) {
	isolate(t)

	if rc := runStatus(nil); rc != 1 {
		t.Errorf("runStatus rc=%d, want 1", rc)
	}
	if rc := runShow(nil); rc != 1 {
		t.Errorf("runShow rc=%d, want 1", rc)
	}
	if rc := runStatus([]string{"extra"}); rc != 2 {
		t.Errorf("runStatus extra rc=%d, want 2", rc)
	}
}

func TestPrintDisplays(t *testing.T) {
	var buf bytes.Buffer
	printDisplays(&buf, []platform.Display{
		{ID: "HDMI-1", Bounds: platform.Rect{X: 1920, Width: 1280, Height: 1024}, Usable: platform.Rect{X: 1920, Width: 1280, Height: 1024}},
		{ID: "DP-1", Primary: true, Bounds: platform.Rect{Width: 1920, Height: 1080}, Usable: platform.Rect{Y: 32, Width: 1920, Height: 1048}},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "DP-1") || !strings.Contains(lines[0], "1920x1080+0+0") || !strings.HasSuffix(lines[0], "(primary)") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "usable 1280x1024+1920+0") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
