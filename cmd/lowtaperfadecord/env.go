package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/buildmode"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/config"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/fetch"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/logging"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	return logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
}

func newFetcher(cfg *config.Config, logger *slog.Logger) *fetch.Fetcher {
	return fetch.New(fetch.Config{
		RetryMax:     cfg.Fetch.RetryMax,
		RetryWaitMin: time.Duration(cfg.Fetch.RetryWaitMinMS) * time.Millisecond,
		RetryWaitMax: time.Duration(cfg.Fetch.RetryWaitMaxMS) * time.Millisecond,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent:    cfg.Fetch.UserAgent,
	}, logger)
}

// newSynchronizer returns nil when theme syncing is disabled. client may be
// nil, in which case a downloaded theme is not enabled.
func newSynchronizer(cfg *config.Config, fetcher theme.Fetcher, client theme.Client, logger *slog.Logger) *theme.Synchronizer {
	if cfg.Theme.URL == "" {
		return nil
	}
	return theme.New(theme.Config{
		LocalPath: cfg.Theme.Path,
		RemoteURL: cfg.Theme.URL,
		DevMode:   buildmode.Dev,
	}, fetcher, client, logger)
}

func openSettings(dataDir string) (*settings.Store, error) {
	return openStore(settings.SettingsPath(dataDir), settings.Defaults())
}

func openState(dataDir string) (*settings.Store, error) {
	return openStore(settings.StatePath(dataDir), nil)
}

// openStore opens a store, resetting a corrupt file with a warning.
func openStore(path string, defaults map[string]any) (*settings.Store, error) {
	store, err := settings.OpenOrReset(path, defaults)
	var corrupt *settings.CorruptError
	if errors.As(err, &corrupt) && store != nil {
		log.Printf("Warning: %v; moved aside to %s.corrupt", corrupt, path)
		return store, nil
	}
	return store, err
}

func applyDisplayEnv(cfg *config.Config) {
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
}
