// Package testhelpers provides common utilities for testing the roomcast
// server: spinning up HTTP test servers, dialing WebSocket connections, and
// reading protocol events off the wire.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/server"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It is closed automatically when the test finishes.
func CreateTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

// MakeRequest creates and executes an HTTP request, returning the response.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	require.Equal(t, expected, resp.StatusCode)
}

// AssertContentType checks if the HTTP response has the expected
// Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	require.Equal(t, expected, resp.Header.Get("Content-Type"))
}

// DialWebSocket opens a WebSocket connection to the test server's /ws
// endpoint, sending the given Origin header. The connection is closed when
// the test finishes.
func DialWebSocket(t *testing.T, serverURL, origin string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(serverURL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/ws"

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	require.NoError(t, err, "websocket dial failed")
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendEvent writes one protocol envelope to the connection.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(server.Envelope{Event: event, Data: raw})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

// EventReader decodes protocol envelopes from a connection, unpacking the
// newline-coalesced frames the write pump may produce.
type EventReader struct {
	t     *testing.T
	conn  *websocket.Conn
	queue []server.Envelope
}

// NewEventReader wraps a connection for event-level reads.
func NewEventReader(t *testing.T, conn *websocket.Conn) *EventReader {
	return &EventReader{t: t, conn: conn}
}

// Next returns the next event, waiting up to the timeout. The second return
// value is false when nothing arrived before the deadline or the connection
// closed.
func (r *EventReader) Next(timeout time.Duration) (server.Envelope, bool) {
	r.t.Helper()
	if len(r.queue) == 0 {
		require.NoError(r.t, r.conn.SetReadDeadline(time.Now().Add(timeout)))
		_, raw, err := r.conn.ReadMessage()
		if err != nil {
			return server.Envelope{}, false
		}
		for _, frame := range bytes.Split(raw, []byte{'\n'}) {
			if len(frame) == 0 {
				continue
			}
			var env server.Envelope
			require.NoError(r.t, json.Unmarshal(frame, &env), "malformed frame: %s", frame)
			r.queue = append(r.queue, env)
		}
	}
	if len(r.queue) == 0 {
		return server.Envelope{}, false
	}
	env := r.queue[0]
	r.queue = r.queue[1:]
	return env, true
}

// WaitFor reads events until one with the given name arrives, skipping
// unrelated ones, and fails the test on timeout.
func (r *EventReader) WaitFor(event string, timeout time.Duration) server.Envelope {
	r.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			r.t.Fatalf("timed out waiting for %q event", event)
		}
		env, ok := r.Next(remaining)
		if !ok {
			r.t.Fatalf("connection yielded no %q event before the deadline", event)
		}
		if env.Event == event {
			return env
		}
	}
}

// ExpectSilence asserts that no event arrives within the timeout.
func (r *EventReader) ExpectSilence(timeout time.Duration) {
	r.t.Helper()
	if env, ok := r.Next(timeout); ok {
		r.t.Fatalf("expected no events, received %q", env.Event)
	}
}

// Decode unmarshals an envelope's payload into the given type.
func Decode[T any](t *testing.T, env server.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// Join performs a join request and requires it to be acknowledged without
// error. Subsequent events (welcome message, roster) stay queued on the
// reader.
func Join(t *testing.T, conn *websocket.Conn, r *EventReader, username, room string) {
	t.Helper()
	SendEvent(t, conn, server.EventJoin, server.JoinRequest{Username: username, Room: room})
	ack := Decode[server.Ack](t, r.WaitFor(server.EventAck, 2*time.Second))
	require.Equal(t, server.EventJoin, ack.For)
	require.Empty(t, ack.Error)
}
