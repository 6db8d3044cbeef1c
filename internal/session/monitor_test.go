package session

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/audit"
)

func TestMonitorWritesSweepHeartbeats(t *testing.T) {
	var buf bytes.Buffer
	auditLog := audit.NewWithWriter(&buf, zerolog.Nop())

	m := startMonitor(uuid.New(), 10*time.Millisecond, nil, make(chan envelope, 16), auditLog, zerolog.Nop())
	time.Sleep(60 * time.Millisecond)
	m.Stop()
	auditLog.Close()

	out := buf.String()
	if !strings.Contains(out, "[SWEEP] checking processes (allowed: exam_app)") {
		t.Errorf("no sweep heartbeat in audit output:\n%s", out)
	}
}

func TestMonitorForwardsSweepViolations(t *testing.T) {
	auditLog := audit.NewWithWriter(&bytes.Buffer{}, zerolog.Nop())
	defer auditLog.Close()

	inbox := make(chan envelope, 16)
	sessionID := uuid.New()
	sweep := func() (bool, string) { return true, "disallowed process: firefox" }

	m := startMonitor(sessionID, 10*time.Millisecond, sweep, inbox, auditLog, zerolog.Nop())
	defer m.Stop()

	select {
	case env := <-inbox:
		v, ok := env.msg.(violationMsg)
		if !ok {
			t.Fatalf("inbox message is %T, want violationMsg", env.msg)
		}
		if v.sessionID != sessionID {
			t.Errorf("sessionID = %s, want %s", v.sessionID, sessionID)
		}
		if v.reason != "disallowed process: firefox" {
			t.Errorf("reason = %q", v.reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no violation posted")
	}
}

func TestMonitorStopIsBoundedAndIdempotent(t *testing.T) {
	auditLog := audit.NewWithWriter(&bytes.Buffer{}, zerolog.Nop())
	defer auditLog.Close()

	// A full, never-drained inbox with a violating sweep is the worst case:
	// Stop must still return because a pending post aborts on the stop signal.
	inbox := make(chan envelope)
	sweep := func() (bool, string) { return true, "x" }
	m := startMonitor(uuid.New(), time.Millisecond, sweep, inbox, auditLog, zerolog.Nop())

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		m.Stop()
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestMonitorNoAuditWritesAfterStop(t *testing.T) {
	var buf bytes.Buffer
	auditLog := audit.NewWithWriter(&buf, zerolog.Nop())

	m := startMonitor(uuid.New(), 5*time.Millisecond, nil, make(chan envelope, 16), auditLog, zerolog.Nop())
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	// Everything the monitor appended was queued before Stop returned; the
	// sentinel written after must be the last line.
	auditLog.Append(audit.CategorySession, "sentinel")
	time.Sleep(30 * time.Millisecond)
	auditLog.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	if !strings.Contains(last, "sentinel") {
		t.Errorf("audit entry after monitor stop: last line %q", last)
	}
}
