package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/lowtaperfadecord/lowtaperfadecord/internal/settings"
)

// settingsForm holds the editable values bound to the form fields.
type settingsForm struct {
	minimizeToTray bool
	startMinimized bool
	spellcheck     bool
	languages      string
}

func loadSettingsForm(store *settings.Store) settingsForm {
	return settingsForm{
		minimizeToTray: store.Bool(settings.KeyMinimizeToTray),
		startMinimized: store.Bool(settings.KeyStartMinimized),
		spellcheck:     store.Bool(settings.KeySpellcheck),
		languages:      strings.Join(store.Strings(settings.KeySpellcheckLanguages), ", "),
	}
}

func splitLanguages(text string) []string {
	var langs []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}

func validateLanguages(text string) error {
	if len(splitLanguages(text)) == 0 {
		return errors.New("at least one language is required")
	}
	return nil
}

// changes returns the encoded values that differ from what store holds.
func (f settingsForm) changes(store *settings.Store) (map[string]json.RawMessage, error) {
	values := map[string]any{
		settings.KeyMinimizeToTray:      f.minimizeToTray,
		settings.KeyStartMinimized:      f.startMinimized,
		settings.KeySpellcheck:          f.spellcheck,
		settings.KeySpellcheckLanguages: splitLanguages(f.languages),
	}

	out := make(map[string]json.RawMessage)
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := settings.Validate(key, raw); err != nil {
			return nil, err
		}
		cur, _ := store.Raw(key)
		if string(cur) == string(raw) {
			continue
		}
		out[key] = raw
	}
	return out, nil
}

func (f *settingsForm) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Minimize to tray").
				Description("Hide the window instead of quitting when it is closed").
				Value(&f.minimizeToTray),
			huh.NewConfirm().
				Title("Start minimized").
				Description("Start hidden in the tray").
				Value(&f.startMinimized),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Spell check").
				Value(&f.spellcheck),
			huh.NewInput().
				Title("Spell check languages").
				Description("Comma separated, e.g. en-US, de-DE").
				Validate(validateLanguages).
				Value(&f.languages),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func runSettingsEdit() int {
	store, err := openUserSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	f := loadSettingsForm(store)
	if err := f.form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	changed, err := f.changes(store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(changed) == 0 {
		fmt.Println("No changes")
		return 0
	}

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := applySetting(key, changed[key]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}
