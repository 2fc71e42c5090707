package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single trailing-edge
// invocation. Every Trigger cancels the pending timer and issues a new
// token; the token of the call that eventually fires identifies the
// most recent trigger, so callers can discard superseded work.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func New() *Debouncer {
	return &Debouncer{}
}

// Trigger schedules fn to run after delay, replacing any pending
// invocation. It returns the token passed to fn when it fires.
func (d *Debouncer) Trigger(delay time.Duration, fn func(token uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	token := d.seq
	d.timer = time.AfterFunc(delay, func() {
		fn(token)
	})

	return token
}

// Cancel stops any pending invocation without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Current returns the token of the most recent trigger.
func (d *Debouncer) Current() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}
