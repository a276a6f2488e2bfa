package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// User setting keys.
const (
	KeyMinimizeToTray      = "minimizeToTray"
	KeyStartMinimized      = "startMinimized"
	KeySpellcheck          = "spellcheck"
	KeySpellcheckLanguages = "spellcheckLanguages"
)

const (
	settingsFileName = "settings.json"
	stateFileName    = "state.json"
)

// Defaults returns the default user settings.
func Defaults() map[string]any {
	return map[string]any{
		KeyMinimizeToTray:      true,
		KeyStartMinimized:      false,
		KeySpellcheck:          true,
		KeySpellcheckLanguages: []string{"en-US"},
	}
}

// SettingsPath returns the user settings file inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

// StatePath returns the window state file inside dir.
func StatePath(dir string) string {
	return filepath.Join(dir, stateFileName)
}

// OpenOrReset opens the store at path. A corrupt file is moved aside to
// path+".corrupt" and an empty store is returned together with the
// original *CorruptError so the caller can report it.
func OpenOrReset(path string, defaults map[string]any) (*Store, error) {
	store, err := Open(path, defaults)
	if err == nil {
		return store, nil
	}
	corrupt, ok := err.(*CorruptError)
	if !ok {
		return nil, err
	}
	if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
		return nil, fmt.Errorf("%v (and failed to move it aside: %w)", corrupt, renameErr)
	}
	store, err = Open(path, defaults)
	if err != nil {
		return nil, err
	}
	return store, corrupt
}

// Known reports whether key is a user setting.
func Known(key string) bool {
	_, ok := Defaults()[key]
	return ok
}

// Validate checks that raw is an acceptable JSON value for key.
func Validate(key string, raw json.RawMessage) error {
	if !Known(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	if key == KeySpellcheckLanguages {
		var langs []string
		if err := json.Unmarshal(raw, &langs); err != nil {
			return fmt.Errorf("setting %q must be a list of language codes: %w", key, err)
		}
		for _, l := range langs {
			if strings.TrimSpace(l) == "" {
				return fmt.Errorf("setting %q contains an empty language code", key)
			}
		}
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("setting %q must be true or false", key)
	}
	return nil
}
