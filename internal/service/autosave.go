package service

import (
	"context"
	"sync"
	"time"
)

// autosaver is a trailing-edge debounce around a save callback. Every
// NotifyChanged while a timer is pending cancels and restarts it, so a burst
// of edits produces exactly one save, delay after the last edit. There is no
// automatic retry: a failed save leaves the timer cleared until the next edit.
type autosaver struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	ctx   context.Context
	save  func(ctx context.Context)
}

func newAutosaver(ctx context.Context, delay time.Duration, save func(ctx context.Context)) *autosaver {
	return &autosaver{
		delay: delay,
		ctx:   ctx,
		save:  save,
	}
}

func (a *autosaver) NotifyChanged() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *autosaver) fire() {
	a.mu.Lock()
	a.timer = nil
	ctx := a.ctx
	a.mu.Unlock()

	// The session context is canceled on close/explicit save; a timer that
	// raced the cancellation must not write.
	if ctx.Err() != nil {
		return
	}
	a.save(ctx)
}

// Cancel clears any pending timer. Called on explicit save and session close.
func (a *autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
