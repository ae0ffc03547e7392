// Package debounce provides a keyed debouncer: one pending action per key,
// restarted on every trigger.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the idle window used by the response list for tag and
// search input.
const DefaultDelay = 1000 * time.Millisecond

type slot struct {
	timer *time.Timer
	seq   uint64
}

// Debouncer coalesces rapid triggers per key into a single action.
// When Debounce is called repeatedly for the same key within the delay,
// only the last action runs, once the delay has elapsed without a new trigger.
// Different keys never cancel each other.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	slots map[string]*slot
}

// New creates a Debouncer with the given delay.
// If delay is 0, DefaultDelay is used.
func New(delay time.Duration) *Debouncer {
	if delay == 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay: delay,
		slots: make(map[string]*slot),
	}
}

// Debounce cancels any pending action for key and schedules action to run
// after the delay.
func (d *Debouncer) Debounce(key string, action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.slots[key]
	if !ok {
		s = &slot{}
		d.slots[key] = s
	}
	s.seq++
	seq := s.seq

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d.delay, func() {
		shouldRun := func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()

			// Stop() can lose the race against a timer that already fired;
			// only the most recent trigger for the key may run.
			cur, ok := d.slots[key]
			if !ok || cur != s || seq != s.seq {
				return false
			}
			delete(d.slots, key)
			return true
		}()
		if !shouldRun {
			return
		}

		action()
	})
}

// Cancel drops the pending action for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.slots[key]; ok {
		s.seq++
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(d.slots, key)
	}
}

// CancelAll drops every pending action.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, s := range d.slots {
		s.seq++
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(d.slots, key)
	}
}

// Pending reports whether an action is scheduled for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.slots[key]
	return ok
}

// Delay returns the debounce delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
