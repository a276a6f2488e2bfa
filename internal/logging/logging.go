// Package logging builds the application's slog logger.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

// Config controls log output.
type Config struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Stderr overrides the console destination. Defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to stderr and, when configured, to a rotating
// file. Console output is text on a terminal and JSON otherwise; file output
// is always JSON. The returned func closes the file.
func New(cfg Config) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var console slog.Handler
	if isTerminal(stderr) {
		console = slog.NewTextHandler(stderr, opts)
	} else {
		console = slog.NewJSONHandler(stderr, opts)
	}

	if cfg.File == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	maxFiles := cfg.MaxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}
	file, err := OpenRotatingFile(cfg.File, cfg.MaxSizeMB, maxFiles)
	if err != nil {
		return nil, nil, err
	}

	handler := fanout{console, slog.NewJSONHandler(file, opts)}
	return slog.New(handler), file.Close, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h {
		if hh.Enabled(ctx, r.Level) {
			errs = append(errs, hh.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}
