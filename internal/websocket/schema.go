package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionFocusLost reports that the exam window lost input focus.
	ActionFocusLost Action = "focus_lost"
	ActionPing      Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventEnded    Event = "ended"
	EventPong     Event = "pong"
	EventError    Event = "error"
)

// SnapshotResponse streams the current session view (remaining time,
// cursor, violation count) to the client.
type SnapshotResponse struct {
	Event    Event       `json:"event"`
	Snapshot interface{} `json:"snapshot"`
}

// EndedResponse notifies the client that the session reached a terminal
// state.
type EndedResponse struct {
	Event Event  `json:"event"`
	State string `json:"state"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
