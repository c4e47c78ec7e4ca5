// Package integration contains multi-client scenarios: moderation,
// location sharing, departures, and room isolation.
package integration

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/message"
	"github.com/roomcast/roomcast/internal/server"
	"github.com/roomcast/roomcast/test/testhelpers"
)

func TestProfaneMessageIsRejectedAndNotBroadcast(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	connA := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerA := testhelpers.NewEventReader(t, connA)
	testhelpers.Join(t, connA, readerA, "Ada", "lobby")

	connB := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerB := testhelpers.NewEventReader(t, connB)
	testhelpers.Join(t, connB, readerB, "Grace", "lobby")

	waitForRoster(t, readerA, "Ada", "Grace")
	waitForRoster(t, readerB, "Ada", "Grace")

	testhelpers.SendEvent(t, connA, server.EventSendMessage, server.SendMessageRequest{Text: "what a B4DG3R move"})

	ack := testhelpers.Decode[server.Ack](t, readerA.WaitFor(server.EventAck, 2*time.Second))
	require.Equal(t, server.EventSendMessage, ack.For)
	require.Equal(t, "Profanity is not allowed!", ack.Error)

	// Nothing reached the rest of the room: the very next message the peer
	// sees is the clean follow-up, and the sender is still joined.
	testhelpers.SendEvent(t, connA, server.EventSendMessage, server.SendMessageRequest{Text: "sorry about that"})
	requireText(t, readerB.WaitFor(server.EventMessage, 2*time.Second), "Ada", "sorry about that")
}

func TestLocationShareRelaysMapsLink(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	connA := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerA := testhelpers.NewEventReader(t, connA)
	testhelpers.Join(t, connA, readerA, "Ada", "lobby")

	connB := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerB := testhelpers.NewEventReader(t, connB)
	testhelpers.Join(t, connB, readerB, "Grace", "lobby")

	waitForRoster(t, readerB, "Ada", "Grace")

	testhelpers.SendEvent(t, connA, server.EventSendLocation, server.SendLocationRequest{
		Latitude:  48.8584,
		Longitude: 2.2945,
	})

	ack := testhelpers.Decode[server.Ack](t, readerA.WaitFor(server.EventAck, 2*time.Second))
	require.Empty(t, ack.Error)

	env := readerB.WaitFor(server.EventLocationMessage, 2*time.Second)
	loc := testhelpers.Decode[message.Location](t, env)
	require.Equal(t, "Ada", loc.Username)
	require.Equal(t, "https://google.com/maps/?q=48.8584,2.2945", loc.URL)
}

func TestLocationShareRejectsOutOfRangeCoordinates(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	conn := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	reader := testhelpers.NewEventReader(t, conn)
	testhelpers.Join(t, conn, reader, "Ada", "lobby")

	testhelpers.SendEvent(t, conn, server.EventSendLocation, server.SendLocationRequest{
		Latitude:  123.4,
		Longitude: 0,
	})

	ack := testhelpers.Decode[server.Ack](t, reader.WaitFor(server.EventAck, 2*time.Second))
	require.Equal(t, server.EventSendLocation, ack.For)
	require.Contains(t, ack.Error, server.ErrInvalidPayload.Error())
}

func TestDisconnectAnnouncesDepartureAndShrinksRoster(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	connA := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerA := testhelpers.NewEventReader(t, connA)
	testhelpers.Join(t, connA, readerA, "Ada", "lobby")

	connB := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerB := testhelpers.NewEventReader(t, connB)
	testhelpers.Join(t, connB, readerB, "Grace", "lobby")

	waitForRoster(t, readerA, "Ada", "Grace")

	require.NoError(t, connB.Close())

	requireText(t, readerA.WaitFor(server.EventMessage, 2*time.Second), "Admin", "Grace has left!")
	waitForRoster(t, readerA, "Ada")
}

func TestDisconnectWithoutJoinIsSilent(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	connA := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerA := testhelpers.NewEventReader(t, connA)
	testhelpers.Join(t, connA, readerA, "Ada", "lobby")
	waitForRoster(t, readerA, "Ada")

	// A connection that never joined comes and goes unnoticed.
	connB := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	require.NoError(t, connB.Close())

	readerA.ExpectSilence(300 * time.Millisecond)
}

func TestRoomsAreIsolated(t *testing.T) {
	ts, _ := newChatServer(t, nil)

	connA := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerA := testhelpers.NewEventReader(t, connA)
	testhelpers.Join(t, connA, readerA, "Ada", "lobby")
	waitForRoster(t, readerA, "Ada")

	// The same display name is free in another room.
	connB := testhelpers.DialWebSocket(t, ts.URL, testOrigin)
	readerB := joinAndDrain(t, connB, "Ada", "den")

	testhelpers.SendEvent(t, connA, server.EventSendMessage, server.SendMessageRequest{Text: "lobby only"})
	readerA.WaitFor(server.EventMessage, 2*time.Second)

	readerB.ExpectSilence(300 * time.Millisecond)
}

// joinAndDrain joins the room and consumes the welcome and roster events,
// leaving the reader quiet.
func joinAndDrain(t *testing.T, conn *websocket.Conn, username, room string) *testhelpers.EventReader {
	t.Helper()
	reader := testhelpers.NewEventReader(t, conn)
	testhelpers.Join(t, conn, reader, username, room)
	waitForRoster(t, reader, username)
	return reader
}
