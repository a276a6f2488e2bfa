package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/mcp"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/theme"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lowtaperfadecord mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'lowtaperfadecord mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: lowtaperfadecord mcp serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Tools talk to the running app when")
		fmt.Fprintln(os.Stdout, "there is one and to the settings and state files otherwise.")
		return 0
	}

	res, err := loadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := res.Config
	applyDisplayEnv(cfg)

	// stdout carries the protocol; logs go to stderr and the log file.
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	var displays platform.DisplaySource
	if backend, err := platform.New(cfg.Display); err == nil {
		defer backend.Close()
		displays = backend
	} else {
		logger.Debug("display enumeration unavailable", "error", err)
	}

	var syncTheme func(ctx context.Context) theme.Result
	if syncer := newSynchronizer(cfg, newFetcher(cfg, logger), nil, logger); syncer != nil {
		syncTheme = syncer.Sync
	}

	server := mcp.NewServer(mcp.Deps{
		App: ipc.NewClient().WithTimeout(themeSyncTimeout),
		OpenSettings: func() (*settings.Store, error) {
			return openSettings(res.DataDir)
		},
		OpenState: func() (*settings.Store, error) {
			return openState(res.DataDir)
		},
		SyncTheme:     syncTheme,
		Displays:      displays,
		DefaultWidth:  cfg.Window.DefaultWidth,
		DefaultHeight: cfg.Window.DefaultHeight,
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return 0
}
