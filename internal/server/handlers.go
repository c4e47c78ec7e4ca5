// Package server exposes the HTTP handlers, including the WebSocket
// upgrade, the health check, and the built-in chat page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roomcast/roomcast/internal/moderation"
)

// Handler bundles the HTTP surface with its collaborators: the hub for
// routing, the profanity filter handed to each new client, and the origin
// policy guarding the upgrade endpoint.
type Handler struct {
	hub      *Hub
	filter   *moderation.Filter
	cfg      Config
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires the HTTP surface. The upgrader's origin check is bound
// to the configured allowlist.
func NewHandler(hub *Hub, filter *moderation.Filter, cfg Config, log *slog.Logger) *Handler {
	policy := newOriginPolicy(cfg.AllowedOrigins, log)
	return &Handler{
		hub:    hub,
		filter: filter,
		cfg:    cfg,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
}

// WebSocket upgrades the connection and registers a new client with the
// hub. Each connection receives a fresh opaque ID; the client stays in the
// Unjoined state until its join request succeeds.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(uuid.NewString(), conn, h.hub, h.filter, r.RemoteAddr, h.cfg, h.log)

	// The hub launches the pump goroutines once it has the client.
	h.hub.RegisterClient(client)
}

// Health reports server status and the number of active sessions.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "roomcast server is running! active sessions: %d", h.hub.Registry().Count())
}

// ChatPage serves the built-in chat client.
func (h *Handler) ChatPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, chatPageHTML); err != nil {
		h.log.Warn("error writing chat page", "error", err)
	}
}
