package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Entry categories. Free-text detail follows the category on each line.
const (
	CategorySession   = "SESSION"
	CategoryIntegrity = "INTEGRITY"
	CategorySweep     = "SWEEP"
	CategoryScore     = "SCORE"
)

const (
	queueSize     = 256
	flushInterval = 500 * time.Millisecond
	closeTimeout  = 5 * time.Second
)

// Entry is one timestamped audit record. Entries are append-only: once
// written they are never mutated or deleted.
type Entry struct {
	At       time.Time
	Category string
	Detail   string
}

// Log is an append-only, ordering-preserving audit sink. Writes are handed
// to a background writer so a slow or broken sink never stalls the caller;
// durability is best-effort relative to session liveness.
type Log struct {
	queue  chan Entry
	stop   chan struct{}
	done   chan struct{}
	closed atomic.Bool
	out    io.Writer
	closer io.Closer
	log    zerolog.Logger
}

// Open creates a Log appending to the file at path. The file is created if
// missing.
func Open(path string, log zerolog.Logger) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	l := newLog(f, f, log)
	return l, nil
}

// NewWithWriter creates a Log writing to w. Used by tests and by callers
// that own the sink's lifecycle.
func NewWithWriter(w io.Writer, log zerolog.Logger) *Log {
	return newLog(w, nil, log)
}

func newLog(w io.Writer, c io.Closer, log zerolog.Logger) *Log {
	l := &Log{
		queue:  make(chan Entry, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		out:    w,
		closer: c,
		log:    log.With().Str("component", "audit").Logger(),
	}
	go l.run()
	return l
}

// Append records an entry. It never fails the caller: if the sink is closed
// or the queue is full the entry is dropped and reported.
func (l *Log) Append(category, detail string) {
	e := Entry{At: time.Now(), Category: category, Detail: detail}

	if l.closed.Load() {
		l.log.Warn().Str("category", category).Msg("Audit entry dropped: sink closed")
		return
	}

	select {
	case l.queue <- e:
	default:
		l.log.Warn().Str("category", category).Msg("Audit entry dropped: queue full")
	}
}

// Close flushes pending entries and releases the sink. Bounded: it waits at
// most closeTimeout for the writer to drain. Idempotent.
func (l *Log) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.stop)

	select {
	case <-l.done:
	case <-time.After(closeTimeout):
		l.log.Error().Msg("Audit writer did not drain in time")
	}

	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// run is the background writer loop. Entries are written in arrival order
// and flushed on a short interval so the file trails the session closely.
func (l *Log) run() {
	defer close(l.done)

	w := bufio.NewWriter(l.out)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case e := <-l.queue:
			if _, err := w.WriteString(formatEntry(e)); err != nil {
				l.log.Error().Err(err).Msg("Audit write failed")
			}
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				l.log.Error().Err(err).Msg("Audit flush failed")
			}
		case <-l.stop:
			// Drain whatever was queued before the stop, then flush once.
			for {
				select {
				case e := <-l.queue:
					if _, err := w.WriteString(formatEntry(e)); err != nil {
						l.log.Error().Err(err).Msg("Audit write failed")
					}
				default:
					if err := w.Flush(); err != nil {
						l.log.Error().Err(err).Msg("Final audit flush failed")
					}
					return
				}
			}
		}
	}
}

// formatEntry renders one line: "[<timestamp>] [CATEGORY] detail".
func formatEntry(e Entry) string {
	return fmt.Sprintf("[%s] [%s] %s\n", e.At.Format(time.ANSIC), e.Category, e.Detail)
}
