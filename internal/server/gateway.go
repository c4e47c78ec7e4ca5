// Package server implements the per-connection protocol gateway: inbound
// events become registry operations, acknowledgments to the requester, and
// room broadcasts.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/roomcast/roomcast/internal/message"
	"github.com/roomcast/roomcast/internal/presence"
)

// adminName attributes system announcements (welcome, join, leave).
const adminName = "Admin"

var validate = validator.New()

// handleInbound decodes one frame and dispatches it. A failed request is
// acknowledged to this connection only; nothing is broadcast for it.
func (c *Client) handleInbound(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("dropping malformed frame", "error", err)
		return
	}

	if !c.rateLimiter.allow() {
		c.log.Debug("rate limit exceeded", "burst", c.rateLimit.Burst, "interval", c.rateLimit.RefillInterval)
		c.ack(env.Event, ErrRateLimited)
		return
	}

	var err error
	switch env.Event {
	case EventJoin:
		err = c.handleJoin(env.Data)
	case EventSendMessage:
		err = c.handleSendMessage(env.Data)
	case EventSendLocation:
		err = c.handleSendLocation(env.Data)
	default:
		err = fmt.Errorf("unknown event %q", env.Event)
	}
	if err != nil {
		c.ack(env.Event, err)
	}
}

// handleJoin admits the connection into a room. On success the requester is
// acknowledged first, then welcomed, the room is told about the newcomer,
// and everyone receives the refreshed roster, in that order.
func (c *Client) handleJoin(data json.RawMessage) error {
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrInvalidPayload
	}
	if err := validate.Struct(req); err != nil {
		return presence.ErrEmptyCredentials
	}

	session, err := c.hub.Registry().Add(c.id, req.Username, req.Room)
	if err != nil {
		return err
	}

	c.ack(EventJoin, nil)
	c.hub.ToSender(c.id, EventMessage, message.NewText(adminName, "Welcome!"))
	c.hub.ToRoomExceptSender(c.id, session.Room, EventMessage, message.NewText(adminName, session.Name+" has joined!"))
	c.pushRoster(session.Room)
	c.log.Info("joined room", "room", session.Room, "username", session.Name)
	return nil
}

// handleSendMessage relays chat text to the sender's room. Flagged text is
// rejected before any fan-out; the message is never censored in place.
func (c *Client) handleSendMessage(data json.RawMessage) error {
	var req SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrInvalidPayload
	}

	session, ok := c.hub.Registry().Get(c.id)
	if !ok {
		return ErrNotJoined
	}
	if c.filter.IsProfane(req.Text) {
		return ErrProfanity
	}

	c.ack(EventSendMessage, nil)
	c.hub.ToRoomAll(session.Room, EventMessage, message.NewText(session.Name, req.Text))
	return nil
}

// handleSendLocation relays a maps link for the sender's coordinates to the
// whole room.
func (c *Client) handleSendLocation(data json.RawMessage) error {
	var req SendLocationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrInvalidPayload
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidPayload)
	}

	session, ok := c.hub.Registry().Get(c.id)
	if !ok {
		return ErrNotJoined
	}

	c.ack(EventSendLocation, nil)
	c.hub.ToRoomAll(session.Room, EventLocationMessage, message.NewLocation(session.Name, req.Latitude, req.Longitude))
	return nil
}

// handleDisconnect removes the session, if one was ever created, and tells
// the rest of the room. Disconnecting without having joined is silent.
func (c *Client) handleDisconnect() {
	session, ok := c.hub.Registry().Remove(c.id)
	if !ok {
		return
	}

	c.hub.ToRoomAll(session.Room, EventMessage, message.NewText(adminName, session.Name+" has left!"))
	c.pushRoster(session.Room)
	c.log.Info("left room", "room", session.Room, "username", session.Name)
}

// pushRoster broadcasts the current roster to the whole room. Queued after
// the announcement that triggered it, so recipients always observe
// announce-then-roster.
func (c *Client) pushRoster(room string) {
	sessions := c.hub.Registry().InRoom(room)
	users := lo.Map(sessions, func(s presence.Session, _ int) string { return s.Name })
	c.hub.ToRoomAll(room, EventRoomRoster, RoomRoster{Room: room, Users: users})
}

// ack reports the outcome of one request to the originating connection.
// The ack is handed to the connection's own send queue synchronously, ahead
// of any broadcast the request produces.
func (c *Client) ack(event string, err error) {
	body := Ack{For: event}
	if err != nil {
		body.Error = err.Error()
	}
	payload, encErr := EncodeEvent(EventAck, body)
	if encErr != nil {
		c.log.Error("failed to encode ack", "error", encErr)
		return
	}
	if !c.hub.safeSend(c, payload) {
		c.log.Debug("ack not delivered, connection closing", "for", event)
	}
}
