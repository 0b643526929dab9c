package progress

import (
	"sync"
	"time"
)

// Throttle rate-limits calls to fn to one per interval.
//
// The first Trigger in a quiet period schedules fn to run once the interval
// has elapsed; further Triggers before then are coalesced into that run.
// Since fn reads the latest state when it runs, a burst always ends with a
// call that observes the last update.
type Throttle struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64
}

// NewThrottle returns a throttle calling fn at most once per interval.
func NewThrottle(interval time.Duration, fn func()) *Throttle {
	return &Throttle{interval: interval, fn: fn}
}

// Trigger requests a call to fn.
func (t *Throttle) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending {
		return
	}
	t.pending = true
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.interval, func() { t.fire(gen) })
}

// Pending reports whether a call to fn is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Stop cancels a scheduled call. The throttle can be triggered again.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
	t.gen++
}

func (t *Throttle) fire(gen uint64) {
	t.mu.Lock()
	if !t.pending || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.timer = nil
	t.mu.Unlock()

	t.fn()
}
