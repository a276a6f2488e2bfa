package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/windowstate"
)

func runState(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  lowtaperfadecord state show [--config PATH] [--json]")
		return 2
	}
	if args[0] != "show" {
		fmt.Fprintf(os.Stderr, "Unknown state command: %s\n", args[0])
		return 2
	}

	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lowtaperfadecord/config.yaml)")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	store, err := openState(res.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	state, err := windowstate.Load(store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	displays, err := currentDisplays(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	next := windowstate.InitialOptions(state, displays, windowstate.Size{
		Width:  res.Config.Window.DefaultWidth,
		Height: res.Config.Window.DefaultHeight,
	})

	if *asJSON {
		data, err := json.MarshalIndent(struct {
			State      windowstate.State   `json:"state"`
			NextLaunch windowstate.Options `json:"next_launch"`
		}{state, next}, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if state.Bounds == nil {
		fmt.Println("bounds:      (none)")
	} else {
		b := state.Bounds
		if b.HasPosition() {
			fmt.Printf("bounds:      %dx%d+%d+%d\n", b.Width, b.Height, *b.X, *b.Y)
		} else {
			fmt.Printf("bounds:      %dx%d\n", b.Width, b.Height)
		}
	}
	fmt.Printf("display:     %s\n", orNone(state.DisplayID))
	fmt.Printf("maximized:   %v\n", state.Maximized)
	fmt.Printf("minimized:   %v\n", state.Minimized)
	if next.HasPosition() {
		fmt.Printf("next_launch: %dx%d+%d+%d\n", next.Width, next.Height, *next.X, *next.Y)
	} else {
		fmt.Printf("next_launch: %dx%d (window manager places it)\n", next.Width, next.Height)
	}
	return 0
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
