package desktop

import (
	goruntime "runtime"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// Menu labels.
const (
	LabelReload         = "Reload"
	LabelMinimizeToTray = "Minimize to tray"
	LabelSpellcheck     = "Spell check"
	LabelHide           = "Hide"
	LabelQuit           = "Quit"
)

// MenuActions are invoked from the application menu.
type MenuActions struct {
	Reload            func()
	Hide              func()
	Quit              func()
	SetMinimizeToTray func(enabled bool)
	SetSpellcheck     func(enabled bool)
}

// MenuState is the initial state of the checkbox items.
type MenuState struct {
	MinimizeToTray bool
	Spellcheck     bool
}

// AppMenu is the application menu with handles to its checkbox items.
type AppMenu struct {
	Menu           *menu.Menu
	minimizeToTray *menu.MenuItem
	spellcheck     *menu.MenuItem
}

// BuildMenu creates the application menu.
func BuildMenu(state MenuState, actions MenuActions) *AppMenu {
	root := menu.NewMenu()
	app := root.AddSubmenu("lowtaperfadecord")

	app.AddText(LabelReload, keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		call(actions.Reload)
	})
	app.AddSeparator()

	m := &AppMenu{Menu: root}
	m.minimizeToTray = app.AddCheckbox(LabelMinimizeToTray, state.MinimizeToTray, nil, func(cd *menu.CallbackData) {
		if actions.SetMinimizeToTray != nil {
			actions.SetMinimizeToTray(cd.MenuItem.Checked)
		}
	})
	m.spellcheck = app.AddCheckbox(LabelSpellcheck, state.Spellcheck, nil, func(cd *menu.CallbackData) {
		if actions.SetSpellcheck != nil {
			actions.SetSpellcheck(cd.MenuItem.Checked)
		}
	})
	app.AddSeparator()

	app.AddText(LabelHide, keys.CmdOrCtrl("w"), func(_ *menu.CallbackData) {
		call(actions.Hide)
	})
	app.AddText(LabelQuit, keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		call(actions.Quit)
	})

	// Copy and paste in the page need the edit role on macOS.
	if goruntime.GOOS == "darwin" {
		root.Append(menu.EditMenu())
	}
	return m
}

// SetState updates the checkbox items. It reports whether anything changed.
func (m *AppMenu) SetState(state MenuState) bool {
	changed := false
	if m.minimizeToTray.Checked != state.MinimizeToTray {
		m.minimizeToTray.Checked = state.MinimizeToTray
		changed = true
	}
	if m.spellcheck.Checked != state.Spellcheck {
		m.spellcheck.Checked = state.Spellcheck
		changed = true
	}
	return changed
}

// Item returns the first item with label, searching submenus.
func (m *AppMenu) Item(label string) *menu.MenuItem {
	return findItem(m.Menu, label)
}

func findItem(mnu *menu.Menu, label string) *menu.MenuItem {
	if mnu == nil {
		return nil
	}
	for _, item := range mnu.Items {
		if item.Label == label {
			return item
		}
		if found := findItem(item.SubMenu, label); found != nil {
			return found
		}
	}
	return nil
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
