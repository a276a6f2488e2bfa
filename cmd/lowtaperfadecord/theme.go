package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

const themeSyncTimeout = 3 * time.Minute

func runTheme(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  lowtaperfadecord theme sync [--config PATH]")
		return 2
	}
	if args[0] != "sync" {
		fmt.Fprintf(os.Stderr, "Unknown theme command: %s\n", args[0])
		return 2
	}

	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lowtaperfadecord/config.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	res, err := ipc.NewClient().WithTimeout(themeSyncTimeout).SyncTheme()
	if err == nil {
		printThemeResult(*res, "app")
		return themeExitCode(*res)
	}
	if !errors.Is(err, ipc.ErrNotRunning) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	loaded, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := loaded.Config
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	syncer := newSynchronizer(cfg, newFetcher(cfg, logger), nil, logger)
	if syncer == nil {
		fmt.Fprintln(os.Stderr, "theme sync is disabled (theme.url is empty)")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), themeSyncTimeout)
	defer cancel()
	result := syncer.Sync(ctx)
	printThemeResult(result, "local")
	if result.Action == theme.ActionDownloaded {
		fmt.Printf("note: %s was downloaded without the app running and is not enabled yet\n", syncer.Name())
	}
	return themeExitCode(result)
}

func printThemeResult(r theme.Result, via string) {
	fmt.Printf("action:      %s (%s)\n", r.Action, via)
	if r.LocalHash != "" {
		fmt.Printf("local_hash:  %s\n", r.LocalHash)
	}
	if r.RemoteHash != "" {
		fmt.Printf("remote_hash: %s\n", r.RemoteHash)
	}
	if r.Error != "" {
		fmt.Printf("error:       %s\n", r.Error)
	}
}

func themeExitCode(r theme.Result) int {
	if r.Action == theme.ActionFailed {
		return 1
	}
	return 0
}
