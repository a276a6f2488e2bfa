package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/buildmode"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/desktop"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/lifecycle"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/logging"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/payload"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

func runApp(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lowtaperfadecord/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord run [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the desktop app. If it is already running, its window is shown instead.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	// A second launch hands over to the running instance.
	if err := ipc.NewClient().Show(); err == nil {
		log.Println("lowtaperfadecord is already running; showing its window")
		return 0
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	applyDisplayEnv(cfg)

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	logger.Info("starting", "build", buildmode.Name(), "config", res.Path, "config_exists", res.Exists)

	userSettings, err := openSettings(res.DataDir)
	if err != nil {
		log.Fatalf("Failed to open settings: %v", err)
	}
	stateStore, err := openState(res.DataDir)
	if err != nil {
		log.Fatalf("Failed to open window state: %v", err)
	}

	var displays platform.DisplaySource
	backend, err := platform.New(cfg.Display)
	if err != nil {
		log.Printf("Window position restore unavailable: %v", err)
	} else {
		defer backend.Close()
		displays = backend
	}

	state, err := windowstate.Load(stateStore)
	if err != nil {
		log.Printf("Warning: ignoring saved window state: %v", err)
		state = windowstate.State{}
	}
	var attached []platform.Display
	if displays != nil {
		if attached, err = displays.Displays(); err != nil {
			log.Printf("Warning: failed to enumerate displays: %v", err)
		}
	}
	opts := windowstate.InitialOptions(state, attached, windowstate.Size{
		Width:  cfg.Window.DefaultWidth,
		Height: cfg.Window.DefaultHeight,
	})
	logger.Debug("initial window options", "width", opts.Width, "height", opts.Height, "positioned", opts.HasPosition(), "maximized", opts.Maximized)

	shell, err := desktop.NewShell(desktop.ShellConfig{
		AppURL:  cfg.AppURL,
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create shell: %v", err)
	}

	tracker := windowstate.NewTracker(stateStore, displays, logger)
	watcher := windowstate.NewWatcher(windowstate.WatcherConfig{
		Interval: time.Duration(cfg.Window.PollIntervalMS) * time.Millisecond,
		Logger:   logger,
	}, shell, tracker)

	fetcher := newFetcher(cfg, logger)
	bridge := desktop.NewThemeBridge(shell.Events(), 0)

	var themeSyncer lifecycle.ThemeSyncer
	if syncer := newSynchronizer(cfg, fetcher, bridge, logger); syncer != nil {
		themeSyncer = syncer
	} else {
		log.Println("Theme sync disabled (theme.url is empty)")
	}

	controller := lifecycle.New(lifecycle.Config{
		Shell:    shell,
		Settings: userSettings,
		Theme:    themeSyncer,
		Payload:  payload.NewLoader(cfg.Payload.URL, cfg.Payload.Path, fetcher, logger),
		Watcher:  watcher,
		Options:  opts,
		Logger:   logger,
	})

	ipcServer, err := ipc.NewServer(ipc.ServerConfig{
		Controller:      controller,
		Displays:        displays,
		Settings:        userSettings,
		ValidateSetting: settings.Validate,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	handler, err := desktop.NewProxy(desktop.ProxyConfig{
		AppURL:      cfg.AppURL,
		PayloadFile: cfg.Payload.Path,
		ThemeDir:    filepath.Dir(cfg.Theme.Path),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to create application proxy: %v", err)
	}

	app := desktop.New(desktop.Config{
		MinWidth:  cfg.Window.MinWidth,
		MinHeight: cfg.Window.MinHeight,
		Window:    opts,
		Handler:   handler,
		Shell:     shell,
		Lifecycle: controller,
		Settings:  userSettings,
		Tray:      cfg.Tray.Enabled,
		LogLevel:  logging.ParseLevel(cfg.Logging.Level),
		Logger:    logger,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down lowtaperfadecord...")
		controller.Quit()
	}()

	if err := app.Run(); err != nil {
		log.Fatalf("%v", err)
	}
	return 0
}
