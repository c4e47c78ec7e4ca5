// Package server wires HTTP handlers into a ServeMux via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: the chat page, the WebSocket endpoint, and the health check.
func SetupRoutes(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.ChatPage)
	mux.HandleFunc("/ws", h.WebSocket)
	mux.HandleFunc("/health", h.Health)
	return mux
}
