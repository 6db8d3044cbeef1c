package session

import (
	"sync"
	"time"
)

// DeadlineTimer is a cancellable, fire-once countdown. The deadline is fixed
// at arming and never recomputed; remaining time is always derived from it,
// never stored. The fire callback runs at most once, no earlier than the
// armed duration (scheduling jitter may delay it, never advance it).
type DeadlineTimer struct {
	deadline time.Time

	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// ArmTimer starts a countdown of d and invokes fire at expiry on its own
// goroutine.
func ArmTimer(d time.Duration, fire func()) *DeadlineTimer {
	t := &DeadlineTimer{deadline: time.Now().Add(d)}
	t.timer = time.AfterFunc(d, fire)
	return t
}

// Cancel stops the countdown. Idempotent, and safe to call after the timer
// has already fired: a cancel that logically precedes firing suppresses it,
// a late cancel is a no-op.
func (t *DeadlineTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.timer.Stop()
}

// Deadline returns the fixed expiry instant.
func (t *DeadlineTimer) Deadline() time.Time {
	return t.deadline
}

// Remaining returns the time left until the deadline as seen at now,
// clamped at zero. Strictly decreasing in now.
func (t *DeadlineTimer) Remaining(now time.Time) time.Duration {
	r := t.deadline.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}
