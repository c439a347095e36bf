package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the quiet period used when none is configured.
const DefaultDebounceDuration = 250 * time.Millisecond

// debouncer runs fn once events have stopped arriving for wait.
type debouncer struct {
	wait time.Duration
	fn   func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // Bumped on every poke and stop; stale timers see a newer value
}

func newDebouncer(wait time.Duration, fn func()) *debouncer {
	if wait <= 0 {
		wait = DefaultDebounceDuration
	}
	return &debouncer{wait: wait, fn: fn}
}

// poke restarts the quiet period.
func (d *debouncer) poke() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *debouncer) fire(gen uint64) {
	d.mu.Lock()
	current := gen == d.gen
	if current {
		d.timer = nil
	}
	d.mu.Unlock()
	if current {
		d.fn()
	}
}

// stop drops any pending run.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
