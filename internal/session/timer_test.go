package session

import (
	"testing"
	"time"
)

func TestTimerFiresAfterDuration(t *testing.T) {
	fired := make(chan time.Time, 1)
	armedAt := time.Now()

	timer := ArmTimer(30*time.Millisecond, func() { fired <- time.Now() })
	defer timer.Cancel()

	select {
	case firedAt := <-fired:
		if firedAt.Sub(armedAt) < 30*time.Millisecond {
			t.Errorf("timer fired early: %s after arming", firedAt.Sub(armedAt))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerCancelSuppressesFire(t *testing.T) {
	fired := make(chan struct{}, 1)

	timer := ArmTimer(50*time.Millisecond, func() { fired <- struct{}{} })
	timer.Cancel()

	select {
	case <-fired:
		t.Fatal("timer fired after cancel")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestTimerCancelIdempotent(t *testing.T) {
	timer := ArmTimer(10*time.Millisecond, func() {})
	timer.Cancel()
	timer.Cancel()

	// Cancelling after the fire already happened is also a no-op.
	fired := make(chan struct{}, 1)
	timer = ArmTimer(5*time.Millisecond, func() { fired <- struct{}{} })
	<-fired
	timer.Cancel()
	timer.Cancel()
}

func TestTimerRemaining(t *testing.T) {
	timer := ArmTimer(time.Hour, func() {})
	defer timer.Cancel()

	now := time.Now()
	r1 := timer.Remaining(now)
	r2 := timer.Remaining(now.Add(time.Minute))

	if r1 <= 0 || r1 > time.Hour {
		t.Errorf("remaining = %s, want within (0, 1h]", r1)
	}
	if r2 >= r1 {
		t.Errorf("remaining did not decrease: %s then %s", r1, r2)
	}

	// Past the deadline the value clamps at zero.
	if r := timer.Remaining(now.Add(2 * time.Hour)); r != 0 {
		t.Errorf("remaining past deadline = %s, want 0", r)
	}
}

func TestTimerDeadlineFixed(t *testing.T) {
	timer := ArmTimer(time.Hour, func() {})
	defer timer.Cancel()

	d1 := timer.Deadline()
	time.Sleep(10 * time.Millisecond)
	if !timer.Deadline().Equal(d1) {
		t.Error("deadline moved after arming")
	}
}
