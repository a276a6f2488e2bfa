package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_ConsoleJSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Level: "info", Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("theme downloaded", "path", "/tmp/x.css")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["msg"] != "theme downloaded" || rec["path"] != "/tmp/x.css" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closeFn, err := New(Config{Level: "debug", File: path, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.With("component", "theme").Debug("up to date")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"component":"theme"`) {
		t.Fatalf("file missing record: %q", data)
	}
	if !strings.Contains(buf.String(), "up to date") {
		t.Fatalf("console missing record: %q", buf.String())
	}
}

func TestRotatingFile_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	r, err := OpenRotatingFile(path, 1, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer r.Close()

	chunk := bytes.Repeat([]byte("x"), 1024*1024)
	for i := 0; i < 4; i++ {
		if _, err := r.Write(chunk); err != nil {
			t.Fatalf("Write #%d: %v", i, err)
		}
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected at most 2 rotated files, stat err = %v", err)
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	r, err := OpenRotatingFile(filepath.Join(t.TempDir(), "app.log"), 1, 1)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	r.Close()
	if _, err := r.Write([]byte("x")); err == nil {
		t.Fatal("expected error writing to closed file")
	}
}
