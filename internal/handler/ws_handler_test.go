package handler_test

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, srvURL, token string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(srvURL, "http://", "ws://", 1) + "/ws/v1/session/stream?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v (resp: %+v)", wsURL, err, resp)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return msg
}

func TestStreamRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/v1/session/stream"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v, want 401", resp)
	}
}

func TestStreamPushesSnapshots(t *testing.T) {
	srv := newTestServer(t)
	token := startSession(t, srv)

	conn := dialStream(t, srv.URL, token)
	msg := readEvent(t, conn)

	if msg["event"] != "snapshot" {
		t.Fatalf("event = %v, want snapshot", msg["event"])
	}
	snap := msg["snapshot"].(map[string]any)
	if snap["state"] != "IN_PROGRESS" {
		t.Errorf("state = %v", snap["state"])
	}
	if snap["remaining_seconds"].(float64) <= 0 {
		t.Errorf("remaining_seconds = %v", snap["remaining_seconds"])
	}
}

func TestStreamPong(t *testing.T) {
	srv := newTestServer(t)
	token := startSession(t, srv)

	conn := dialStream(t, srv.URL, token)
	if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	// The pong may interleave with periodic snapshots.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if msg := readEvent(t, conn); msg["event"] == "pong" {
			return
		}
	}
	t.Fatal("no pong received")
}

func TestStreamFocusLossFeedsViolations(t *testing.T) {
	srv := newTestServer(t)
	token := startSession(t, srv)

	conn := dialStream(t, srv.URL, token)
	if err := conn.WriteJSON(map[string]string{"action": "focus_lost"}); err != nil {
		t.Fatalf("write focus_lost: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg := readEvent(t, conn)
		if msg["event"] != "snapshot" {
			continue
		}
		snap := msg["snapshot"].(map[string]any)
		if snap["violations"].(float64) >= 1 {
			return
		}
	}
	t.Fatal("violation count never reflected the focus loss")
}

func TestStreamEndsOnSubmit(t *testing.T) {
	srv := newTestServer(t)
	token := startSession(t, srv)

	conn := dialStream(t, srv.URL, token)
	readEvent(t, conn) // first snapshot confirms the stream is live

	if status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/session/submit", token, ""); status != http.StatusOK {
		t.Fatal("submit failed")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg := readEvent(t, conn)
		if msg["event"] == "ended" {
			if msg["state"] != "COMPLETED" {
				t.Errorf("ended state = %v", msg["state"])
			}
			return
		}
	}
	t.Fatal("no ended event after submit")
}

// The reader goroutine must exit when the write loop ends the stream, even
// if it is mid-forward at that moment. Floods of actions against streams
// that terminate server-side are the case that used to strand readers on
// the forward channel.
func TestStreamReaderExitsAfterStreamEnds(t *testing.T) {
	srv := newTestServer(t)

	baseline := runtime.NumGoroutine()
	const streams = 10

	for i := 0; i < streams; i++ {
		token := startSession(t, srv)
		conn := dialStream(t, srv.URL, token)

		// Flood focus_lost frames; the violation threshold aborts the
		// session, so the write loop returns while forwards are in flight.
		for j := 0; j < 50; j++ {
			if err := conn.WriteJSON(map[string]string{"action": "focus_lost"}); err != nil {
				break
			}
		}

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil || msg["event"] == "ended" {
				break
			}
		}
		conn.Close()
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+3 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("goroutines: %d before, %d after %d terminated streams",
		baseline, runtime.NumGoroutine(), streams)
}

// Guard against the snapshot payload ever carrying answer keys.
func TestStreamSnapshotOmitsCorrectAnswers(t *testing.T) {
	srv := newTestServer(t)
	token := startSession(t, srv)

	conn := dialStream(t, srv.URL, token)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), `"correct"`) {
		t.Errorf("snapshot leaks answer key: %s", raw)
	}
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}
