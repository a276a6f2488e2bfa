package desktop

import (
	_ "embed"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

//go:embed icon.png
var trayIcon []byte

// TrayActions are invoked from the tray menu.
type TrayActions struct {
	Show func()
	Hide func()
	Quit func()
}

// Tray is the system tray icon. It is registered on the event loop the
// shell already runs instead of starting its own.
type Tray struct {
	actions TrayActions
	logger  *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// StartTray registers the tray icon.
func StartTray(actions TrayActions, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tray{
		actions: actions,
		logger:  logger.With("component", "tray"),
		done:    make(chan struct{}),
	}
	systray.Register(t.onReady, t.onExit)
	return t
}

func (t *Tray) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle("lowtaperfadecord")
	systray.SetTooltip("lowtaperfadecord")

	show := systray.AddMenuItem("Show", "Show the window")
	hide := systray.AddMenuItem("Hide", "Hide the window")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit lowtaperfadecord")

	t.logger.Debug("tray ready")

	go func() {
		for {
			select {
			case <-show.ClickedCh:
				call(t.actions.Show)
			case <-hide.ClickedCh:
				call(t.actions.Hide)
			case <-quit.ClickedCh:
				call(t.actions.Quit)
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.logger.Debug("tray removed")
}

// Stop removes the tray icon.
func (t *Tray) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		systray.Quit()
	})
}
