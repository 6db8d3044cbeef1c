package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState enumerates the lifecycle states of an exam session.
type SessionState string

const (
	SessionStateIdle       SessionState = "IDLE"
	SessionStateLoading    SessionState = "LOADING"
	SessionStateInProgress SessionState = "IN_PROGRESS"
	SessionStateGrading    SessionState = "GRADING"
	SessionStateCompleted  SessionState = "COMPLETED"
	SessionStateAborted    SessionState = "ABORTED"
)

// Terminal reports whether the state accepts no further commands.
func (s SessionState) Terminal() bool {
	return s == SessionStateCompleted || s == SessionStateAborted
}

// Unanswered marks a question with no selected option.
const Unanswered = -1

// SessionSnapshot is the read-only view of an active or finished session,
// published to the UI. It never carries correct answers.
type SessionSnapshot struct {
	SessionID        uuid.UUID    `json:"session_id"`
	ExamTitle        string       `json:"exam_title"`
	State            SessionState `json:"state"`
	Cursor           int          `json:"cursor"`
	Question         QuestionView `json:"question"`
	Selected         int          `json:"selected"` // Unanswered if none
	RemainingSeconds int          `json:"remaining_seconds"`
	Violations       int          `json:"violations"`
}

// SessionResult is the final report of a finished session. For ABORTED
// sessions Score still reflects the partial answer set.
type SessionResult struct {
	SessionID  uuid.UUID    `json:"session_id"`
	ExamTitle  string       `json:"exam_title"`
	State      SessionState `json:"state"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Answers    []int        `json:"answers"` // Unanswered entries are -1
	Violations int          `json:"violations"`
	Reason     string       `json:"reason,omitempty"` // Set on ABORTED
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// StartSessionRequest is the payload for starting a proctored session.
type StartSessionRequest struct {
	Source     string `json:"source" binding:"required,min=1,max=255"`
	Credential string `json:"credential" binding:"required,min=1,max=128"`
}

// CreateExamRequest is the payload for authoring a new exam definition.
// Gated by the same credential that starts sessions.
type CreateExamRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=255"`
	Credential string `json:"credential" binding:"required,min=1,max=128"`
	Exam       Exam   `json:"exam" binding:"required"`
}

// SelectOptionRequest is the payload for answering the current question.
type SelectOptionRequest struct {
	Option *int `json:"option" binding:"required,min=0"`
}

// NavigateRequest is the payload for moving the question cursor.
type NavigateRequest struct {
	Delta int `json:"delta" binding:"required,oneof=-1 1"`
}
