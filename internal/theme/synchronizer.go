// Package theme keeps the locally cached CSS theme in sync with its remote
// copy and enables it in the embedded client on first download.
package theme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/fetch"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/filehash"
)

// DefaultName is the file name the theme is cached and enabled under.
const DefaultName = "lowtaperfadecord.theme.css"

// Action is the outcome of a sync pass.
type Action string

const (
	ActionDownloaded Action = "downloaded"
	ActionUpdated    Action = "updated"
	ActionUpToDate   Action = "up-to-date"
	ActionDevSkipped Action = "dev-skipped"
	ActionFailed     Action = "failed"
)

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	FetchToFile(ctx context.Context, url, dest string, opts fetch.Options) error
}

// Config fixes the theme location for the lifetime of a Synchronizer.
type Config struct {
	LocalPath string
	RemoteURL string
	// DevMode skips overwriting an existing theme. A missing theme is still
	// downloaded.
	DevMode bool
	Headers map[string]string
}

// Result describes a finished sync pass. Err carries the error that was
// logged and swallowed, if any.
type Result struct {
	Action     Action    `json:"action"`
	LocalHash  string    `json:"local_hash,omitempty"`
	RemoteHash string    `json:"remote_hash,omitempty"`
	Enabled    bool      `json:"enabled,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
	Err        error     `json:"-"`
}

// Synchronizer compares the local theme against the remote copy and
// downloads it when missing or stale.
type Synchronizer struct {
	cfg     Config
	fetcher Fetcher
	client  Client
	logger  *slog.Logger

	// run serializes passes; they share the .tmp and .part paths.
	run sync.Mutex

	mu   sync.Mutex
	last *Result
}

// New creates a Synchronizer. client may be nil, in which case a fresh
// download is not enabled anywhere.
func New(cfg Config, fetcher Fetcher, client Client, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		cfg:     cfg,
		fetcher: fetcher,
		client:  client,
		logger:  logger.With("component", "theme"),
	}
}

// Name returns the theme's file name as the client knows it.
func (s *Synchronizer) Name() string {
	return filepath.Base(s.cfg.LocalPath)
}

// LocalPath returns the cached theme path.
func (s *Synchronizer) LocalPath() string {
	return s.cfg.LocalPath
}

// Last returns the result of the most recent Sync.
func (s *Synchronizer) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Sync runs one pass. Failures are logged and reported in the result; Sync
// never leaves a partially written theme behind. Concurrent calls run one
// after another.
func (s *Synchronizer) Sync(ctx context.Context) Result {
	s.run.Lock()
	defer s.run.Unlock()

	var res Result
	if _, err := os.Stat(s.cfg.LocalPath); errors.Is(err, fs.ErrNotExist) {
		res = s.download(ctx)
	} else {
		res = s.refresh(ctx)
	}

	res.FinishedAt = time.Now()
	if res.Err != nil {
		res.Error = res.Err.Error()
	}

	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()
	return res
}

func (s *Synchronizer) fetchOptions() fetch.Options {
	return fetch.Options{Headers: s.cfg.Headers, RetryOnNetworkError: true}
}

// download handles a missing local theme.
func (s *Synchronizer) download(ctx context.Context) Result {
	if err := s.fetcher.FetchToFile(ctx, s.cfg.RemoteURL, s.cfg.LocalPath, s.fetchOptions()); err != nil {
		s.logger.Error("failed to download theme", "url", s.cfg.RemoteURL, "error", err)
		return Result{Action: ActionFailed, Err: err}
	}
	if _, err := os.Stat(s.cfg.LocalPath); err != nil {
		err = fmt.Errorf("theme missing after download: %w", err)
		s.logger.Error("failed to download theme", "path", s.cfg.LocalPath, "error", err)
		return Result{Action: ActionFailed, Err: err}
	}

	res := Result{Action: ActionDownloaded}
	if hash, err := filehash.File(s.cfg.LocalPath); err == nil {
		res.RemoteHash = hash
		res.LocalHash = hash
	}
	s.logger.Info("theme downloaded", "path", s.cfg.LocalPath)

	if s.client == nil {
		return res
	}
	changed, err := Enable(ctx, s.client, s.Name())
	if err != nil {
		s.logger.Error("failed to enable theme", "theme", s.Name(), "error", err)
		res.Err = err
		return res
	}
	res.Enabled = true
	if changed {
		s.logger.Info("theme enabled", "theme", s.Name())
	}
	return res
}

// refresh handles an existing local theme.
func (s *Synchronizer) refresh(ctx context.Context) Result {
	localHash, err := filehash.File(s.cfg.LocalPath)
	if err != nil {
		s.logger.Error("failed to hash local theme", "path", s.cfg.LocalPath, "error", err)
		return Result{Action: ActionFailed, Err: err}
	}
	res := Result{LocalHash: localHash}

	tmp := s.cfg.LocalPath + ".tmp"
	defer os.Remove(tmp)

	if err := s.fetcher.FetchToFile(ctx, s.cfg.RemoteURL, tmp, s.fetchOptions()); err != nil {
		s.logger.Error("failed to fetch remote theme", "url", s.cfg.RemoteURL, "error", err)
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	remoteHash, err := filehash.File(tmp)
	if err != nil {
		s.logger.Error("failed to hash remote theme", "path", tmp, "error", err)
		res.Action = ActionFailed
		res.Err = err
		return res
	}
	res.RemoteHash = remoteHash

	if s.cfg.DevMode {
		s.logger.Debug("development build, not refreshing theme", "local", localHash, "remote", remoteHash)
		res.Action = ActionDevSkipped
		return res
	}

	if localHash == remoteHash {
		s.logger.Debug("theme up to date", "hash", localHash)
		res.Action = ActionUpToDate
		return res
	}

	if err := s.fetcher.FetchToFile(ctx, s.cfg.RemoteURL, s.cfg.LocalPath, s.fetchOptions()); err != nil {
		s.logger.Error("failed to update theme", "url", s.cfg.RemoteURL, "error", err)
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	s.logger.Info("theme updated", "path", s.cfg.LocalPath, "old", localHash, "new", remoteHash)
	res.Action = ActionUpdated
	return res
}
