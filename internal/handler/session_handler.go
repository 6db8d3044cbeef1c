package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/auth"
	"github.com/eduos-project/proctor-backend/internal/exam"
	"github.com/eduos-project/proctor-backend/internal/middleware"
	"github.com/eduos-project/proctor-backend/internal/model"
	"github.com/eduos-project/proctor-backend/internal/response"
	"github.com/eduos-project/proctor-backend/internal/session"
	"github.com/eduos-project/proctor-backend/internal/validator"
)

// SessionHandler exposes the exam session controller over HTTP.
type SessionHandler struct {
	ctrl     *session.Controller
	loader   *exam.Loader
	provider auth.Provider
	tokens   *auth.TokenService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ctrl *session.Controller, loader *exam.Loader, provider auth.Provider, tokens *auth.TokenService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		ctrl:     ctrl,
		loader:   loader,
		provider: provider,
		tokens:   tokens,
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

// ListExams godoc
// GET /api/v1/exams
// Returns the exam sources available for selection.
func (h *SessionHandler) ListExams(c *gin.Context) {
	sources, err := h.loader.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Listing exam sources failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sources == nil {
		sources = []model.ExamSource{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": sources})
}

// CreateExam godoc
// POST /api/v1/exams
// Authors a new exam definition in the exam directory. Requires the exam
// credential; the definition is validated before it is written, so a saved
// exam always loads.
func (h *SessionHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.provider.Check(req.Credential); err != nil {
		h.log.Warn().Str("name", req.Name).Msg("Exam creation rejected: bad credential")
		response.Fail(c, http.StatusUnauthorized, response.ErrAuthFailed)
		return
	}

	if err := h.loader.Save(req.Name, &req.Exam); err != nil {
		h.failFromSessionError(c, err)
		return
	}

	h.log.Info().Str("name", req.Name).Str("title", req.Exam.Title).Msg("Exam definition created")
	response.Success(c, http.StatusCreated, gin.H{"exam": model.ExamSource{
		Name:  strings.TrimSuffix(filepath.Base(req.Name), ".json"),
		Title: req.Exam.Title,
	}})
}

// StartSession godoc
// POST /api/v1/session/start
// Authenticates the credential, loads the exam, and starts the proctored
// session. Returns a session token required by every in-session command.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.ctrl.Start(req.Source, req.Credential)
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}

	token, err := h.tokens.Issue(snap.SessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("Token issue failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token":    token,
		"snapshot": snap,
	})
}

// SelectOption godoc
// POST /api/v1/session/answer
// Records the selected option for the current question.
func (h *SessionHandler) SelectOption(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.ctrl.SelectOption(*req.Option)
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// Navigate godoc
// POST /api/v1/session/navigate
// Moves the question cursor by ±1. Out-of-range moves leave it unchanged.
func (h *SessionHandler) Navigate(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.ctrl.Navigate(req.Delta)
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// Submit godoc
// POST /api/v1/session/submit
// Ends the session and grades the answers.
func (h *SessionHandler) Submit(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	snap, err := h.ctrl.Submit()
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// Quit godoc
// POST /api/v1/session/quit
// Abandons the session, recording the partial answers.
func (h *SessionHandler) Quit(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	snap, err := h.ctrl.Quit()
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// GetState godoc
// GET /api/v1/session/state
// Returns the current session snapshot.
func (h *SessionHandler) GetState(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	snap, err := h.ctrl.Snapshot()
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// GetResult godoc
// GET /api/v1/session/result
// Returns the final report of a finished session.
func (h *SessionHandler) GetResult(c *gin.Context) {
	if !h.verifySession(c) {
		return
	}

	res, err := h.ctrl.Result()
	if err != nil {
		h.failFromSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// verifySession checks that the token's session is the controller's current
// one, so a stale token from a replaced session cannot drive commands.
func (h *SessionHandler) verifySession(c *gin.Context) bool {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return false
	}

	snap, err := h.ctrl.Snapshot()
	if err != nil {
		h.failFromSessionError(c, err)
		return false
	}
	if snap.SessionID != claims.SessionID {
		response.Fail(c, http.StatusConflict, response.ErrSessionMismatch)
		return false
	}
	return true
}

// failFromSessionError maps controller errors onto the response taxonomy.
func (h *SessionHandler) failFromSessionError(c *gin.Context, err error) {
	var authErr *session.AuthError
	var stateErr *session.StateError
	var cfgErr *exam.ConfigError

	switch {
	case errors.As(err, &authErr):
		response.Fail(c, http.StatusUnauthorized, response.ErrAuthFailed)
	case errors.As(err, &cfgErr):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrExamConfig, cfgErr.Error())
	case errors.As(err, &stateErr):
		switch {
		case stateErr.Command == "start":
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		case stateErr.State == model.SessionStateIdle:
			response.Fail(c, http.StatusConflict, response.ErrNoSession)
		default:
			response.Fail(c, http.StatusConflict, response.ErrSessionState)
		}
	case errors.Is(err, session.ErrOptionOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrOptionInvalid)
	default:
		h.log.Error().Err(err).Msg("Session command failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
