package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/audit"
)

// SweepFunc inspects the host for disallowed conditions during a periodic
// sweep. Returning violation=true raises a ViolationDetected event with the
// given detail. The base sweep only simulates the check and never violates.
type SweepFunc func() (violation bool, detail string)

// IntegrityMonitor is an independent concurrent observer attached to one
// session. It writes a heartbeat audit entry on every sweep and forwards
// sweep-detected violations into the controller's inbox. It never mutates
// session state directly.
type IntegrityMonitor struct {
	sessionID uuid.UUID
	interval  time.Duration
	sweep     SweepFunc
	inbox     chan<- envelope
	audit     *audit.Log
	log       zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// startMonitor spawns the monitor loop for the given session.
func startMonitor(
	sessionID uuid.UUID,
	interval time.Duration,
	sweep SweepFunc,
	inbox chan<- envelope,
	auditLog *audit.Log,
	log zerolog.Logger,
) *IntegrityMonitor {
	m := &IntegrityMonitor{
		sessionID: sessionID,
		interval:  interval,
		sweep:     sweep,
		inbox:     inbox,
		audit:     auditLog,
		log:       log.With().Str("component", "integrity_monitor").Logger(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go m.run()
	return m
}

// Stop signals the monitor and waits for its loop to exit. Idempotent and
// bounded: once the loop observes the signal it performs no further audit
// writes. The session transition that triggers Stop is not complete until
// this returns.
func (m *IntegrityMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

func (m *IntegrityMonitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Debug().Str("session_id", m.sessionID.String()).Msg("Integrity monitor started")

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			// Re-check stop before writing: a tick that raced the stop
			// signal must not produce audit entries.
			select {
			case <-m.stop:
				return
			default:
			}
			m.runSweep()
		}
	}
}

func (m *IntegrityMonitor) runSweep() {
	m.audit.Append(audit.CategorySweep, "checking processes (allowed: exam_app)")

	if m.sweep == nil {
		return
	}
	violation, detail := m.sweep()
	if !violation {
		return
	}

	m.log.Warn().Str("detail", detail).Msg("Sweep reported a violation")

	// Post into the controller inbox. Give up if the monitor is stopped
	// while waiting, so Stop can never deadlock against a pending post.
	select {
	case m.inbox <- envelope{msg: violationMsg{sessionID: m.sessionID, reason: detail}}:
	case <-m.stop:
	}
}
