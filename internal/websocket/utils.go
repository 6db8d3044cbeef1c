package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// The stream pushes a snapshot every second, so a write that cannot complete
// within a few cadences means the UI is gone, not merely slow.
const writeWait = 5 * time.Second

// Candidates can sit on a question without touching the UI for a long time;
// only a connection idle past this window is treated as dead.
const idleWait = 3 * time.Minute

// WriteEvent sends one server event, bounding the write by writeWait.
func WriteEvent(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError reports a stream-level problem to the client.
func WriteError(conn *websocket.Conn, detail string) error {
	return WriteEvent(conn, ErrorResponse{
		Event: EventError,
		Error: detail,
	})
}

// ReadAction decodes the next client action, refreshing the idle window.
func ReadAction(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(idleWait))
	return conn.ReadJSON(v)
}
