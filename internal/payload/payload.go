// Package payload makes sure the client script bundle injected into the
// remote application is present on disk.
package payload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/fetch"
)

// ErrNoPayload is returned by Open when no payload is available.
var ErrNoPayload = errors.New("client payload not available")

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	FetchToFile(ctx context.Context, url, dest string, opts fetch.Options) error
}

// Loader ensures the payload at Path exists, downloading it from URL when
// missing.
type Loader struct {
	url     string
	path    string
	fetcher Fetcher
	logger  *slog.Logger
}

// NewLoader creates a loader. An empty url disables downloading.
func NewLoader(url, path string, fetcher Fetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		url:     url,
		path:    path,
		fetcher: fetcher,
		logger:  logger.With("component", "payload"),
	}
}

// Path returns the payload location.
func (l *Loader) Path() string {
	return l.path
}

// Ensure downloads the payload when it is missing. It reports whether a
// download happened.
func (l *Loader) Ensure(ctx context.Context) (bool, error) {
	if l.path == "" {
		return false, nil
	}
	if _, err := os.Stat(l.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat payload %s: %w", l.path, err)
	}

	if l.url == "" {
		l.logger.Debug("payload missing and no url configured", "path", l.path)
		return false, nil
	}

	l.logger.Info("downloading client payload", "url", l.url, "path", l.path)
	if err := l.fetcher.FetchToFile(ctx, l.url, l.path, fetch.Options{RetryOnNetworkError: true}); err != nil {
		return false, fmt.Errorf("failed to download payload: %w", err)
	}
	return true, nil
}

// Read returns the payload contents, or ErrNoPayload when it does not exist.
func (l *Loader) Read() ([]byte, error) {
	if l.path == "" {
		return nil, ErrNoPayload
	}
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoPayload
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return data, nil
}
