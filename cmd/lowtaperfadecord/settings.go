package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/config"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/ipc"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
	"golang.org/x/term"
)

func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lowtaperfadecord settings list [--json]")
	fmt.Fprintln(w, "  lowtaperfadecord settings get <key>")
	fmt.Fprintln(w, "  lowtaperfadecord settings set <key> <value>")
	fmt.Fprintln(w, "  lowtaperfadecord settings edit")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  minimizeToTray        true|false  Hide to tray when the window is closed")
	fmt.Fprintln(w, "  startMinimized        true|false  Start hidden (or minimized)")
	fmt.Fprintln(w, "  spellcheck            true|false  Enable spell checking")
	fmt.Fprintln(w, "  spellcheckLanguages   en-US,de-DE Spell check languages")
}

func runSettings(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printSettingsUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		asJSON := fs.Bool("json", false, "Print as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		store, err := openUserSettings()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *asJSON {
			data, err := json.MarshalIndent(store.Snapshot(), "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Println(string(data))
			return 0
		}
		printSettings(os.Stdout, store, term.IsTerminal(int(os.Stdout.Fd())))
		return 0

	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord settings get <key>")
			return 2
		}
		store, err := openUserSettings()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		raw, ok := store.Raw(args[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown setting %q\n", args[1])
			return 1
		}
		fmt.Println(string(raw))
		return 0

	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord settings set <key> <value>")
			return 2
		}
		key := args[1]
		raw, err := parseSettingValue(key, args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		if err := applySetting(key, raw); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "edit":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: lowtaperfadecord settings edit")
			return 2
		}
		return runSettingsEdit()

	default:
		fmt.Fprintf(os.Stderr, "Unknown settings command: %s\n\n", args[0])
		printSettingsUsage(os.Stderr)
		return 2
	}
}

// parseSettingValue accepts JSON, and a comma separated list for the
// language setting.
func parseSettingValue(key, text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		if key != settings.KeySpellcheckLanguages {
			return nil, fmt.Errorf("invalid value for %s: %q", key, text)
		}
		data, err := json.Marshal(splitLanguages(text))
		if err != nil {
			return nil, err
		}
		raw = data
	}
	if err := settings.Validate(key, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// applySetting writes through the running app when there is one, so
// listeners fire immediately, and to the settings file otherwise.
func applySetting(key string, raw json.RawMessage) error {
	err := ipc.NewClient().SetSetting(key, raw)
	if err == nil {
		fmt.Printf("%s = %s (applied)\n", key, raw)
		return nil
	}
	if !errors.Is(err, ipc.ErrNotRunning) {
		return err
	}

	store, err := openUserSettings()
	if err != nil {
		return err
	}
	if err := store.Set(key, raw); err != nil {
		return err
	}
	fmt.Printf("%s = %s (saved)\n", key, raw)
	return nil
}

func printSettings(w io.Writer, store *settings.Store, styled bool) {
	keyStyle := lipgloss.NewStyle().Width(22)
	valueStyle := lipgloss.NewStyle()
	if styled {
		keyStyle = keyStyle.Foreground(lipgloss.Color("250"))
		valueStyle = valueStyle.Foreground(lipgloss.Color("15")).Bold(true)
	}
	snap := store.Snapshot()
	for _, key := range store.Keys() {
		fmt.Fprintln(w, keyStyle.Render(key)+valueStyle.Render(string(snap[key])))
	}
}

func openUserSettings() (*settings.Store, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return openSettings(dataDir)
}
