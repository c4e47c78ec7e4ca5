// Package server implements the WebSocket chat relay: the hub that routes
// events to rooms, the per-connection gateway that turns inbound events
// into registry operations and broadcasts, and the HTTP surface around
// them.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, the protocol gateway, routing, and HTTP handlers
// to keep the codebase maintainable and testable as the project grows.
package server
