// Package server defines the wire protocol types exchanged with clients.
package server

import (
	"encoding/json"
	"errors"
)

// Event names accepted from clients.
const (
	EventJoin         = "join"
	EventSendMessage  = "sendMessage"
	EventSendLocation = "sendLocation"
)

// Event names pushed to clients. EventRoomRoster keeps the "roomDate" wire
// name the web client listens for.
const (
	EventAck             = "ack"
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomRoster      = "roomDate"
)

// Protocol errors reported back to the originating client only. ErrProfanity
// carries the exact text the web client displays.
var (
	ErrNotJoined      = errors.New("you have not joined a room yet")
	ErrProfanity      = errors.New("Profanity is not allowed!")
	ErrInvalidPayload = errors.New("invalid event payload")
	ErrRateLimited    = errors.New("too many messages, slow down")
)

// Envelope frames every event exchanged over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRequest asks to enter a room under a display name.
type JoinRequest struct {
	Username string `json:"username" validate:"required"`
	Room     string `json:"room" validate:"required"`
}

// SendMessageRequest carries free chat text.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendLocationRequest carries the sender's coordinates.
type SendLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Ack acknowledges one inbound request. Error is empty on success.
type Ack struct {
	For   string `json:"for"`
	Error string `json:"error,omitempty"`
}

// RoomRoster is the ordered list of display names currently in a room,
// pushed to the whole room on every join and leave.
type RoomRoster struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// EncodeEvent marshals an outbound event into its envelope framing.
func EncodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
