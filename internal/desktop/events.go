package desktop

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names shared with the injected bridge script.
const (
	EventThemesGet  = "lowtaperfadecord:themes:get"
	EventThemesSet  = "lowtaperfadecord:themes:set"
	EventThemesList = "lowtaperfadecord:themes:list"
	EventSpellcheck = "lowtaperfadecord:spellcheck"
)

// EventBus is the subset of the Wails event runtime the shell uses.
type EventBus interface {
	Emit(name string, data ...any)
	Once(name string, fn func(data ...any)) func()
}

// runtimeEvents forwards to the Wails runtime once a context is bound.
type runtimeEvents struct {
	mu  sync.Mutex
	ctx context.Context
}

func (e *runtimeEvents) bind(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
}

func (e *runtimeEvents) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

func (e *runtimeEvents) Emit(name string, data ...any) {
	ctx := e.context()
	if ctx == nil {
		return
	}
	runtime.EventsEmit(ctx, name, data...)
}

func (e *runtimeEvents) Once(name string, fn func(data ...any)) func() {
	ctx := e.context()
	if ctx == nil {
		return func() {}
	}
	return runtime.EventsOnce(ctx, name, func(data ...interface{}) {
		fn(data...)
	})
}
