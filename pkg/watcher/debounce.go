package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces bursts of change events (editors often
// write a file several times in quick succession).
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback invocation
// after a quiet period.
type Debouncer struct {
	duration time.Duration
	mu       sync.Mutex
	timer    *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period. A
// non-positive duration falls back to the default.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the configured quiet period.
func (d *Debouncer) Duration() time.Duration { return d.duration }

// Trigger schedules fn after the quiet period, resetting the timer if a
// trigger is already pending. Only the most recent fn runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel stops any pending trigger.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
