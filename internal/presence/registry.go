// Package presence implements the in-memory registry that binds each live
// connection to a display name and a room, and answers room membership
// queries for the broadcast layer.
package presence

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrEmptyCredentials is returned when the display name or room is
	// blank after trimming.
	ErrEmptyCredentials = errors.New("username and room are required")

	// ErrNameTaken is returned when another session already holds the same
	// display name (compared case-insensitively) in the same room.
	ErrNameTaken = errors.New("username is already taken in this room")

	// ErrAlreadyJoined is returned when a connection that already owns a
	// session attempts a second join.
	ErrAlreadyJoined = errors.New("this connection has already joined a room")
)

// Session binds one live connection to a display name and a room. The room
// is stored normalized (trimmed, lowercased); the name keeps its original
// casing for display. Sessions are immutable once created and the registry
// only ever hands out copies.
type Session struct {
	ConnectionID string
	Name         string
	Room         string

	seq uint64
}

// Registry is the sole owner of the session collection. All mutations go
// through a single mutex so that a roster snapshot taken right after a join
// or leave always reflects that change.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	rooms    map[string]map[string]string // room -> folded name -> connection ID
	lastSeq  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		rooms:    make(map[string]map[string]string),
	}
}

// Add validates and inserts a session for the given connection. The raw name
// and room are trimmed, the room lowercased; name uniqueness within the room
// is checked case-insensitively.
func (r *Registry) Add(connectionID, rawName, rawRoom string) (Session, error) {
	name := strings.TrimSpace(rawName)
	room := normalizeRoom(rawRoom)
	if name == "" || room == "" {
		return Session{}, ErrEmptyCredentials
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connectionID]; ok {
		return Session{}, ErrAlreadyJoined
	}
	if members, ok := r.rooms[room]; ok {
		if _, taken := members[foldName(name)]; taken {
			return Session{}, ErrNameTaken
		}
	}

	r.lastSeq++
	session := Session{
		ConnectionID: connectionID,
		Name:         name,
		Room:         room,
		seq:          r.lastSeq,
	}
	r.sessions[connectionID] = session
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]string)
	}
	r.rooms[room][foldName(name)] = connectionID
	return session, nil
}

// Remove deletes the session owned by the connection and returns it.
// Removing an unknown connection is a valid no-op: disconnecting without
// ever joining happens routinely.
func (r *Registry) Remove(connectionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, connectionID)
	if members, ok := r.rooms[session.Room]; ok {
		delete(members, foldName(session.Name))
		if len(members) == 0 {
			delete(r.rooms, session.Room)
		}
	}
	return session, true
}

// Get looks up the session owned by the connection without mutating anything.
func (r *Registry) Get(connectionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connectionID]
	return session, ok
}

// InRoom returns all sessions in the room, in join order. The room argument
// is normalized the same way as in Add, so " Lobby " and "lobby" name the
// same room.
func (r *Registry) InRoom(rawRoom string) []Session {
	room := normalizeRoom(rawRoom)

	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	sessions := make([]Session, 0, len(members))
	for _, connectionID := range members {
		if session, ok := r.sessions[connectionID]; ok {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].seq < sessions[j].seq })
	return sessions
}

// Count reports the number of active sessions across all rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

func normalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

func foldName(name string) string {
	return strings.ToLower(name)
}
