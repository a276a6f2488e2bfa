package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runApp(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runApp(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "theme":
		os.Exit(runTheme(os.Args[2:]))
	case "state":
		os.Exit(runState(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		if len(os.Args[1]) > 0 && os.Args[1][0] == '-' {
			os.Exit(runApp(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lowtaperfadecord [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the desktop app (default)")
	fmt.Fprintln(w, "  status              Show the running app's status")
	fmt.Fprintln(w, "  show                Bring the running app's window to the front")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  theme sync          Download or refresh the theme now")
	fmt.Fprintln(w, "  state show          Show the saved window state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  settings list       List settings")
	fmt.Fprintln(w, "  settings get        Print one setting")
	fmt.Fprintln(w, "  settings set        Change a setting")
	fmt.Fprintln(w, "  settings edit       Edit settings interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  displays            List attached displays")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'lowtaperfadecord <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the running app's status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("phase:            %s\n", status.Phase)
	fmt.Printf("visible:          %v\n", status.Visible)
	fmt.Printf("minimize_to_tray: %v\n", status.MinimizeToTray)
	fmt.Printf("spellcheck:       %v %v\n", status.Spellcheck, status.Languages)
	if status.Theme != nil {
		fmt.Printf("theme:            %s\n", status.Theme.Action)
		if status.Theme.Error != "" {
			fmt.Printf("theme_error:      %s\n", status.Theme.Error)
		}
	} else {
		fmt.Printf("theme:            pending\n")
	}
	fmt.Printf("pid:              %d\n", status.PID)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	hide := fs.Bool("hide", false, "Hide the window to the tray instead")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord show [--hide]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show (or hide) the running app's window.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "show takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	var err error
	if *hide {
		err = client.Hide()
	} else {
		err = client.Show()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lowtaperfadecord/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord displays [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List attached displays and their ids.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	displays, err := currentDisplays(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printDisplays(os.Stdout, displays)
	return 0
}

// currentDisplays asks the running app first and falls back to querying
// the display server directly.
func currentDisplays(configPath string) ([]platform.Display, error) {
	if data, err := ipc.NewClient().GetDisplays(); err == nil {
		return data.Displays, nil
	}

	res, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	backend, err := platform.New(res.Config.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Close()
	return backend.Displays()
}

func printDisplays(w io.Writer, displays []platform.Display) {
	sort.Slice(displays, func(i, j int) bool { return displays[i].ID < displays[j].ID })
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(w, "%-12s %dx%d+%d+%d usable %dx%d+%d+%d%s\n",
			d.ID,
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
			d.Usable.Width, d.Usable.Height, d.Usable.X, d.Usable.Y,
			primary)
	}
}
