package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/middleware"
	"github.com/eduos-project/proctor-backend/internal/session"
	ws "github.com/eduos-project/proctor-backend/internal/websocket"
)

// snapshotInterval is how often the stream pushes session state to the UI.
const snapshotInterval = time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session state to the UI and accepts focus-loss
// notifications from it.
type WSHandler struct {
	ctrl     *session.Controller
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(ctrl *session.Controller, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		ctrl:     ctrl,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream?token=...
// Pushes a snapshot every second and an "ended" event on the terminal
// transition. Reads focus_lost/ping actions from the client.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	snap, err := h.ctrl.Snapshot()
	if err != nil || snap.SessionID != claims.SessionID {
		ws.WriteError(conn, "no active session for this token")
		return
	}

	wsLog := h.log.With().Str("session_id", claims.SessionID.String()).Logger()
	wsLog.Info().Msg("UI connected")

	// Reads happen on their own goroutine so the snapshot ticker below owns
	// all writes to the connection. A pending forward aborts once the write
	// loop returns, so the reader can never outlive the stream.
	msgs := make(chan ws.RequestEnvelope)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(msgs)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadAction(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case msgs <- msg:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch msg.Action {
			case ws.ActionFocusLost:
				h.ctrl.ReportFocusLoss(claims.SessionID)
			case ws.ActionPing:
				ws.WriteEvent(conn, ws.PongResponse{Event: ws.EventPong})
			default:
				wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
				ws.WriteError(conn, "unknown action: "+string(msg.Action))
			}

		case <-ticker.C:
			snap, err := h.ctrl.Snapshot()
			if err != nil || snap.SessionID != claims.SessionID {
				ws.WriteEvent(conn, ws.EndedResponse{Event: ws.EventEnded, State: "GONE"})
				return
			}
			if err := ws.WriteEvent(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Snapshot: snap}); err != nil {
				wsLog.Debug().Err(err).Msg("Snapshot write failed")
				return
			}
			if snap.State.Terminal() {
				ws.WriteEvent(conn, ws.EndedResponse{Event: ws.EventEnded, State: string(snap.State)})
				return
			}
		}
	}
}
