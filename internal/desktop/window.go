package desktop

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// windowRuntime is the part of the Wails window runtime the shell drives.
type windowRuntime interface {
	SetTitle(ctx context.Context, title string)
	Show(ctx context.Context)
	Hide(ctx context.Context)
	Minimise(ctx context.Context)
	Unminimise(ctx context.Context)
	Maximise(ctx context.Context)
	SetSize(ctx context.Context, width, height int)
	SetPosition(ctx context.Context, x, y int)
	Position(ctx context.Context) (int, int)
	Size(ctx context.Context) (int, int)
	IsMaximised(ctx context.Context) bool
	IsMinimised(ctx context.Context) bool
	ExecJS(ctx context.Context, js string)
	Reload(ctx context.Context)
	Quit(ctx context.Context)
}

type wailsWindow struct{}

func (wailsWindow) SetTitle(ctx context.Context, title string) { runtime.WindowSetTitle(ctx, title) }
func (wailsWindow) Show(ctx context.Context)                   { runtime.WindowShow(ctx) }
func (wailsWindow) Hide(ctx context.Context)                   { runtime.WindowHide(ctx) }
func (wailsWindow) Minimise(ctx context.Context)               { runtime.WindowMinimise(ctx) }
func (wailsWindow) Unminimise(ctx context.Context)             { runtime.WindowUnminimise(ctx) }
func (wailsWindow) Maximise(ctx context.Context)               { runtime.WindowMaximise(ctx) }
func (wailsWindow) ExecJS(ctx context.Context, js string)      { runtime.WindowExecJS(ctx, js) }
func (wailsWindow) Reload(ctx context.Context)                 { runtime.WindowReload(ctx) }
func (wailsWindow) Quit(ctx context.Context)                   { runtime.Quit(ctx) }

func (wailsWindow) SetSize(ctx context.Context, width, height int) {
	runtime.WindowSetSize(ctx, width, height)
}

func (wailsWindow) SetPosition(ctx context.Context, x, y int) {
	runtime.WindowSetPosition(ctx, x, y)
}

func (wailsWindow) Position(ctx context.Context) (int, int) {
	return runtime.WindowGetPosition(ctx)
}

func (wailsWindow) Size(ctx context.Context) (int, int) {
	return runtime.WindowGetSize(ctx)
}

func (wailsWindow) IsMaximised(ctx context.Context) bool {
	return runtime.WindowIsMaximised(ctx)
}

func (wailsWindow) IsMinimised(ctx context.Context) bool {
	return runtime.WindowIsMinimised(ctx)
}
