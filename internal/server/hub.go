// Package server coordinates client registration, room-scoped event
// delivery, and connection cleanup via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roomcast/roomcast/internal/presence"
)

// Delivery scopes supported by the hub. An event goes to the originating
// connection only, to everyone else in a room, or to the whole room.
type deliveryScope int

const (
	scopeSender deliveryScope = iota
	scopeRoomExceptSender
	scopeRoomAll
)

type delivery struct {
	scope    deliveryScope
	senderID string
	room     string
	payload  []byte
}

// Hub is the broadcast router. It owns the connection map and fans events
// out to clients, resolving room membership through the presence registry's
// query methods. A single run loop serializes deliveries, so events queued
// for a room are observed by every recipient in queue order.
type Hub struct {
	registry   *presence.Registry
	log        *slog.Logger
	clients    map[string]*Client
	deliveries chan delivery
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a hub routing through the given registry. Run must be
// started in its own goroutine before clients are registered.
func NewHub(log *slog.Logger, registry *presence.Registry) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:   registry,
		log:        log,
		clients:    make(map[string]*Client),
		deliveries: make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Registry exposes the presence registry for read-only session lookups by
// the per-connection gateways.
func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

// RegisterClient hands a new client to the run loop, which launches its
// pump goroutines. After shutdown the connection is simply closed.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		if client.conn != nil {
			_ = client.conn.Close()
		}
	}
}

// ToSender queues an event for the originating connection only.
func (h *Hub) ToSender(connectionID, event string, data any) {
	h.enqueue(delivery{scope: scopeSender, senderID: connectionID}, event, data)
}

// ToRoomExceptSender queues an event for every other connection in the room.
func (h *Hub) ToRoomExceptSender(connectionID, room, event string, data any) {
	h.enqueue(delivery{scope: scopeRoomExceptSender, senderID: connectionID, room: room}, event, data)
}

// ToRoomAll queues an event for every connection in the room, the sender
// included if present.
func (h *Hub) ToRoomAll(room, event string, data any) {
	h.enqueue(delivery{scope: scopeRoomAll, room: room}, event, data)
}

func (h *Hub) enqueue(d delivery, event string, data any) {
	payload, err := EncodeEvent(event, data)
	if err != nil {
		h.log.Error("failed to encode event", "event", event, "error", err)
		return
	}
	d.payload = payload

	select {
	case h.deliveries <- d:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main event loop, handling client registration,
// unregistration, and event delivery. Call it in a separate goroutine; it
// returns only on shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("received nil client registration, skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.id] = client
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.Info("client connected", "addr", client.addr, "connection_id", client.id, "total", count)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.closed = true
				count := len(h.clients)
				h.mutex.Unlock()
				// Close the send channel after releasing the lock.
				close(client.send)
				h.log.Info("client disconnected", "addr", client.addr, "connection_id", client.id, "total", count)
			} else {
				h.mutex.Unlock()
			}

		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// deliver resolves the delivery scope to concrete clients and sends the
// payload to each. Clients whose send buffer is full are evicted.
func (h *Hub) deliver(d delivery) {
	var targets []*Client
	switch d.scope {
	case scopeSender:
		if client := h.client(d.senderID); client != nil {
			targets = append(targets, client)
		}
	case scopeRoomExceptSender, scopeRoomAll:
		for _, session := range h.registry.InRoom(d.room) {
			if d.scope == scopeRoomExceptSender && session.ConnectionID == d.senderID {
				continue
			}
			if client := h.client(session.ConnectionID); client != nil {
				targets = append(targets, client)
			}
		}
	}

	var failed []*Client
	for _, client := range targets {
		if !h.safeSend(client, d.payload) {
			failed = append(failed, client)
		}
	}
	h.removeFailedClients(failed)
}

func (h *Hub) client(connectionID string) *Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.clients[connectionID]
}

func (h *Hub) safeSend(client *Client, payload []byte) bool {
	// Hold the lock during the send so the channel cannot be closed by an
	// unregister racing with us.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, ok := h.clients[client.id]; !ok || client.closed {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) removeFailedClients(failed []*Client) {
	if len(failed) == 0 {
		return
	}

	h.mutex.Lock()
	var channels []chan []byte
	for _, client := range failed {
		if _, ok := h.clients[client.id]; ok {
			delete(h.clients, client.id)
			client.closed = true
			channels = append(channels, client.send)
			h.log.Warn("client evicted, send buffer full", "addr", client.addr, "connection_id", client.id)
		}
	}
	h.mutex.Unlock()

	for _, ch := range channels {
		close(ch)
	}
}

// shutdownClients closes all active client connections.
func (h *Hub) shutdownClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Warn("error closing client connection", "addr", client.addr, "error", err)
			}
		}
	}

	h.log.Info("closed client connections", "count", len(clients))
}

// Shutdown stops the run loop, closes every connection, and waits for the
// pump goroutines to finish or the timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timed out")
		return context.DeadlineExceeded
	}
}
