package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/audit"
	"github.com/eduos-project/proctor-backend/internal/auth"
	"github.com/eduos-project/proctor-backend/internal/exam"
	"github.com/eduos-project/proctor-backend/internal/model"
)

// ErrOptionOutOfRange is returned when SelectOption names an option the
// current question does not have.
var ErrOptionOutOfRange = errors.New("option index out of range")

// Config carries the session parameters. Duration and threshold are inputs,
// never constants: deployments disagree on both.
type Config struct {
	// Duration of a session; the deadline is start + Duration, fixed.
	Duration time.Duration
	// ViolationThreshold aborts the session when reached. 0 disables.
	ViolationThreshold int
	// SweepInterval between integrity sweeps.
	SweepInterval time.Duration
	// Sweep optionally checks for disallowed conditions on each sweep.
	Sweep SweepFunc
}

// ─── Inbox messages ─────────────────────────────────────────────────

type startMsg struct {
	source     string
	credential string
}

type selectMsg struct{ option int }
type navigateMsg struct{ delta int }
type submitMsg struct{}
type quitMsg struct{}
type snapshotMsg struct{}
type resultMsg struct{}

// Async events from the timer, the monitor, and the UI focus feed. Guarded
// by session identity and current state, never by timestamps.
type timerExpiredMsg struct{ sessionID uuid.UUID }
type violationMsg struct {
	sessionID uuid.UUID
	reason    string
}

type result struct {
	snap model.SessionSnapshot
	res  *model.SessionResult
	err  error
}

// envelope pairs a message with its reply channel. Async events carry no
// reply channel.
type envelope struct {
	msg   any
	reply chan result
}

// ─── Session state ──────────────────────────────────────────────────

// examSession is the mutable unit of work. It is owned by the controller's
// event loop; nothing outside the loop reads or writes it.
type examSession struct {
	id         uuid.UUID
	exam       *model.Exam
	state      model.SessionState
	startedAt  time.Time
	finishedAt time.Time
	cursor     int
	answers    *AnswerStore
	violations int
	score      int
	reason     string
	timer      *DeadlineTimer
	monitor    *IntegrityMonitor
}

// ─── Controller ─────────────────────────────────────────────────────

// Controller is the session state machine. All mutation happens on a single
// event-consumption goroutine (Run); timers, the integrity monitor, and UI
// commands communicate with it exclusively through the serialized inbox, so
// no lock guards session state and transitions have a strict total order.
type Controller struct {
	cfg      Config
	loader   *exam.Loader
	provider auth.Provider
	audit    *audit.Log
	log      zerolog.Logger

	inbox   chan envelope
	stopped chan struct{}

	// sess is owned by the Run goroutine. nil means IDLE.
	sess *examSession
}

// NewController creates a Controller. Call Run to start consuming events.
func NewController(
	cfg Config,
	loader *exam.Loader,
	provider auth.Provider,
	auditLog *audit.Log,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		cfg:      cfg,
		loader:   loader,
		provider: provider,
		audit:    auditLog,
		log:      log.With().Str("component", "session_controller").Logger(),
		inbox:    make(chan envelope, 64),
		stopped:  make(chan struct{}),
	}
}

// Run consumes the inbox until ctx is cancelled. Blocks; call in a
// goroutine. An active session is aborted on shutdown so no timer or
// monitor outlives the loop.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.stopped)

	c.log.Info().Msg("Session controller started")

	for {
		select {
		case <-ctx.Done():
			if c.sess != nil && !c.sess.state.Terminal() {
				c.abort("server shutdown")
			}
			c.log.Info().Msg("Session controller stopped")
			return
		case env := <-c.inbox:
			c.handle(env)
		}
	}
}

// ─── Public API (posts into the inbox) ──────────────────────────────

// Start authenticates the credential, loads the exam source, and begins a
// session. Fails with *AuthError on credential mismatch, *exam.ConfigError
// on a bad source, and *StateError if a session is already active.
func (c *Controller) Start(source, credential string) (model.SessionSnapshot, error) {
	r, err := c.do(startMsg{source: source, credential: credential})
	return r.snap, err
}

// SelectOption records option as the answer to the current question.
func (c *Controller) SelectOption(option int) (model.SessionSnapshot, error) {
	r, err := c.do(selectMsg{option: option})
	return r.snap, err
}

// Navigate moves the cursor by delta (-1 or +1). Out-of-range moves are a
// no-op, not an error and not a clamp.
func (c *Controller) Navigate(delta int) (model.SessionSnapshot, error) {
	r, err := c.do(navigateMsg{delta: delta})
	return r.snap, err
}

// Submit ends the session and grades the answer store.
func (c *Controller) Submit() (model.SessionSnapshot, error) {
	r, err := c.do(submitMsg{})
	return r.snap, err
}

// Quit abandons the session. The partial answer store is recorded as-is.
func (c *Controller) Quit() (model.SessionSnapshot, error) {
	r, err := c.do(quitMsg{})
	return r.snap, err
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() (model.SessionSnapshot, error) {
	r, err := c.do(snapshotMsg{})
	return r.snap, err
}

// Result returns the final report of a finished session.
func (c *Controller) Result() (*model.SessionResult, error) {
	r, err := c.do(resultMsg{})
	return r.res, err
}

// ReportFocusLoss forwards a focus-loss notification from the UI boundary
// as a violation event against the given session. Fire-and-forget; events
// against a session that already left IN_PROGRESS are ignored.
func (c *Controller) ReportFocusLoss(sessionID uuid.UUID) {
	c.postEvent(violationMsg{sessionID: sessionID, reason: "focus loss detected"})
}

func (c *Controller) do(msg any) (result, error) {
	reply := make(chan result, 1)

	select {
	case c.inbox <- envelope{msg: msg, reply: reply}:
	case <-c.stopped:
		return result{}, ErrControllerStopped
	}

	select {
	case r := <-reply:
		return r, r.err
	case <-c.stopped:
		return result{}, ErrControllerStopped
	}
}

// postEvent queues an async event. Safe from any goroutine; gives up once
// the controller has stopped.
func (c *Controller) postEvent(msg any) {
	select {
	case c.inbox <- envelope{msg: msg}:
	case <-c.stopped:
	}
}

// ─── Event loop ─────────────────────────────────────────────────────

func (c *Controller) handle(env envelope) {
	var r result

	switch m := env.msg.(type) {
	case startMsg:
		r = c.handleStart(m)
	case selectMsg:
		r = c.handleSelect(m)
	case navigateMsg:
		r = c.handleNavigate(m)
	case submitMsg:
		r = c.handleSubmit()
	case quitMsg:
		r = c.handleQuit()
	case snapshotMsg:
		r = c.handleSnapshot()
	case resultMsg:
		r = c.handleResult()
	case timerExpiredMsg:
		c.handleTimerExpired(m)
		return
	case violationMsg:
		c.handleViolation(m)
		return
	default:
		r = result{err: fmt.Errorf("unknown message %T", env.msg)}
	}

	if env.reply != nil {
		env.reply <- r
	}
}

func (c *Controller) handleStart(m startMsg) result {
	if c.sess != nil && !c.sess.state.Terminal() {
		return result{err: &StateError{State: c.sess.state, Command: "start"}}
	}

	if err := c.provider.Check(m.credential); err != nil {
		c.log.Warn().Str("source", m.source).Msg("Start rejected: bad credential")
		return result{err: &AuthError{Err: err}}
	}

	ex, err := c.loader.Load(m.source)
	if err != nil {
		return result{err: err}
	}

	now := time.Now()
	sess := &examSession{
		id:        uuid.New(),
		exam:      ex,
		state:     model.SessionStateInProgress,
		startedAt: now,
		cursor:    0,
		answers:   NewAnswerStore(len(ex.Questions)),
	}

	id := sess.id
	sess.timer = ArmTimer(c.cfg.Duration, func() {
		c.postEvent(timerExpiredMsg{sessionID: id})
	})
	sess.monitor = startMonitor(id, c.cfg.SweepInterval, c.cfg.Sweep, c.inbox, c.audit, c.log)

	c.sess = sess

	c.audit.Append(audit.CategorySession, fmt.Sprintf("session started: %q (%d questions, %s)",
		ex.Title, len(ex.Questions), c.cfg.Duration))
	c.audit.Append(audit.CategorySession, "simulating: setting fullscreen and locking window focus")
	c.audit.Append(audit.CategorySession, "simulating: blocking keyboard shortcuts (Alt+Tab, Ctrl+Alt+Del)")
	c.audit.Append(audit.CategorySession, "simulating: restricting processes to exam app only")

	c.log.Info().
		Str("session_id", id.String()).
		Str("exam", ex.Title).
		Int("questions", len(ex.Questions)).
		Msg("Session started")

	return result{snap: c.snapshot()}
}

func (c *Controller) handleSelect(m selectMsg) result {
	if err := c.requireInProgress("select_option"); err != nil {
		return result{err: err}
	}
	sess := c.sess
	if m.option < 0 || m.option >= len(sess.exam.Questions[sess.cursor].Options) {
		return result{err: ErrOptionOutOfRange}
	}
	sess.answers.Set(sess.cursor, m.option)
	return result{snap: c.snapshot()}
}

func (c *Controller) handleNavigate(m navigateMsg) result {
	if err := c.requireInProgress("navigate"); err != nil {
		return result{err: err}
	}
	target := c.sess.cursor + m.delta
	if target >= 0 && target < len(c.sess.exam.Questions) {
		c.sess.cursor = target
	}
	return result{snap: c.snapshot()}
}

func (c *Controller) handleSubmit() result {
	if err := c.requireInProgress("submit"); err != nil {
		return result{err: err}
	}
	c.audit.Append(audit.CategorySession, "exam submitted by candidate")
	c.grade()
	return result{snap: c.snapshot()}
}

func (c *Controller) handleQuit() result {
	if err := c.requireInProgress("quit"); err != nil {
		return result{err: err}
	}
	c.audit.Append(audit.CategorySession, "exam quit by candidate, recording partial answers")
	c.abort("quit by candidate")
	return result{snap: c.snapshot()}
}

func (c *Controller) handleSnapshot() result {
	if c.sess == nil {
		return result{err: &StateError{State: model.SessionStateIdle, Command: "state"}}
	}
	return result{snap: c.snapshot()}
}

func (c *Controller) handleResult() result {
	if c.sess == nil || !c.sess.state.Terminal() {
		state := model.SessionStateIdle
		if c.sess != nil {
			state = c.sess.state
		}
		return result{err: &StateError{State: state, Command: "result"}}
	}

	sess := c.sess
	return result{res: &model.SessionResult{
		SessionID:  sess.id,
		ExamTitle:  sess.exam.Title,
		State:      sess.state,
		Score:      sess.score,
		Total:      len(sess.exam.Questions),
		Answers:    sess.answers.All(),
		Violations: sess.violations,
		Reason:     sess.reason,
		StartedAt:  sess.startedAt,
		FinishedAt: sess.finishedAt,
	}}
}

// handleTimerExpired forces grading exactly once. A spurious re-delivery
// after the session left IN_PROGRESS is ignored by the state guard.
func (c *Controller) handleTimerExpired(m timerExpiredMsg) {
	if c.sess == nil || c.sess.id != m.sessionID || c.sess.state != model.SessionStateInProgress {
		return
	}
	c.audit.Append(audit.CategorySession, "time limit reached, auto-submitting")
	c.log.Info().Str("session_id", m.sessionID.String()).Msg("Deadline reached")
	c.grade()
}

func (c *Controller) handleViolation(m violationMsg) {
	if c.sess == nil || c.sess.id != m.sessionID || c.sess.state != model.SessionStateInProgress {
		return
	}

	sess := c.sess
	sess.violations++
	c.audit.Append(audit.CategoryIntegrity, fmt.Sprintf("violation %d: %s", sess.violations, m.reason))
	c.log.Warn().
		Str("session_id", sess.id.String()).
		Int("count", sess.violations).
		Str("reason", m.reason).
		Msg("Integrity violation")

	if c.cfg.ViolationThreshold > 0 && sess.violations >= c.cfg.ViolationThreshold {
		c.abort("integrity threshold exceeded")
	}
}

// ─── Transitions ────────────────────────────────────────────────────

func (c *Controller) requireInProgress(command string) error {
	if c.sess == nil {
		return &StateError{State: model.SessionStateIdle, Command: command}
	}
	if c.sess.state != model.SessionStateInProgress {
		return &StateError{State: c.sess.state, Command: command}
	}
	return nil
}

// grade drives IN_PROGRESS → GRADING → COMPLETED. Runs entirely within one
// event, so the two transitions are atomic relative to every other message.
func (c *Controller) grade() {
	sess := c.sess
	sess.state = model.SessionStateGrading

	c.leaveInProgress()

	sess.score = Score(sess.exam, sess.answers)
	sess.state = model.SessionStateCompleted
	sess.finishedAt = time.Now()

	c.audit.Append(audit.CategoryScore, fmt.Sprintf("score: %d/%d", sess.score, len(sess.exam.Questions)))
	c.log.Info().
		Str("session_id", sess.id.String()).
		Int("score", sess.score).
		Int("total", len(sess.exam.Questions)).
		Msg("Session completed")
}

// abort drives the session to ABORTED with the given reason. The partial
// answer store is retained and its score recorded for reporting.
func (c *Controller) abort(reason string) {
	sess := c.sess

	c.leaveInProgress()

	sess.score = Score(sess.exam, sess.answers)
	sess.state = model.SessionStateAborted
	sess.reason = reason
	sess.finishedAt = time.Now()

	c.audit.Append(audit.CategorySession, fmt.Sprintf("session aborted: %s", reason))
	c.audit.Append(audit.CategoryScore, fmt.Sprintf("partial score: %d/%d", sess.score, len(sess.exam.Questions)))
	c.log.Warn().
		Str("session_id", sess.id.String()).
		Str("reason", reason).
		Msg("Session aborted")
}

// leaveInProgress is the single authorization point for releasing the
// session's concurrent producers: it cancels the deadline timer (idempotent,
// safe after firing) and stops the integrity monitor, waiting for it. No
// timer or monitor outlives its session.
func (c *Controller) leaveInProgress() {
	sess := c.sess
	sess.timer.Cancel()
	sess.monitor.Stop()

	c.audit.Append(audit.CategorySession, "simulating: restoring window state")
	c.audit.Append(audit.CategorySession, "simulating: re-enabling keyboard shortcuts")
	c.audit.Append(audit.CategorySession, "simulating: restoring process access")
}

// snapshot builds the UI view of the current session. Remaining time is
// derived from the fixed deadline, never from a stored countdown.
func (c *Controller) snapshot() model.SessionSnapshot {
	sess := c.sess

	remaining := 0
	if sess.state == model.SessionStateInProgress {
		remaining = int(sess.timer.Remaining(time.Now()).Seconds())
	}

	return model.SessionSnapshot{
		SessionID:        sess.id,
		ExamTitle:        sess.exam.Title,
		State:            sess.state,
		Cursor:           sess.cursor,
		Question:         sess.exam.ViewQuestion(sess.cursor),
		Selected:         sess.answers.Get(sess.cursor),
		RemainingSeconds: remaining,
		Violations:       sess.violations,
	}
}
