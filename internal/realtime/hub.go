package realtime

import (
	"sync"

	"github.com/lanbix/interview-backend/internal/models"
)

// Membership records which participant a connection represents in one
// room. Keeping this on the hub makes disconnects attributable: the
// transport-level close can be mapped back to (room, user) without any
// client cooperation.
type Membership struct {
	UserID string
	Name   string
	Role   models.Role
}

// Hub is the in-memory connection registry. It groups connections into
// named rooms and tracks the connection-to-participant mapping for each
// room a connection has joined.
type Hub struct {
	mu sync.RWMutex

	// roomID -> connID -> conn
	rooms map[string]map[string]Conn
	// connID -> roomID -> membership
	members map[string]map[string]Membership
	// roomID -> userID -> connID, for targeted forwarding
	users map[string]map[string]string
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[string]Conn),
		members: make(map[string]map[string]Membership),
		users:   make(map[string]map[string]string),
	}
}

// Join adds the connection to a room's broadcast group and records who
// it represents there. A second join by the same user replaces the
// previous connection mapping.
func (h *Hub) Join(roomID string, c Conn, m Membership) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]Conn)
	}
	h.rooms[roomID][c.ID()] = c

	if h.members[c.ID()] == nil {
		h.members[c.ID()] = make(map[string]Membership)
	}
	h.members[c.ID()][roomID] = m

	if h.users[roomID] == nil {
		h.users[roomID] = make(map[string]string)
	}
	h.users[roomID][m.UserID] = c.ID()
}

// Leave removes the connection from one room. It returns the membership
// the connection held there, if any.
func (h *Hub) Leave(roomID, connID string) (Membership, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leaveLocked(roomID, connID)
}

func (h *Hub) leaveLocked(roomID, connID string) (Membership, bool) {
	m, ok := h.members[connID][roomID]
	if ok {
		delete(h.members[connID], roomID)
		if len(h.members[connID]) == 0 {
			delete(h.members, connID)
		}
		if h.users[roomID][m.UserID] == connID {
			delete(h.users[roomID], m.UserID)
			if len(h.users[roomID]) == 0 {
				delete(h.users, roomID)
			}
		}
	}
	if conns := h.rooms[roomID]; conns != nil {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	return m, ok
}

// Drop removes the connection from every room it joined and returns the
// memberships it held, keyed by room id.
func (h *Hub) Drop(connID string) map[string]Membership {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]Membership, len(h.members[connID]))
	for roomID := range h.members[connID] {
		if m, ok := h.leaveLocked(roomID, connID); ok {
			out[roomID] = m
		}
	}
	return out
}

// Membership returns who the connection represents in a room.
func (h *Hub) Membership(roomID, connID string) (Membership, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.members[connID][roomID]
	return m, ok
}

// Broadcast sends an event to every connection in the room except the
// one named by exceptConnID (empty means everyone). Send failures are
// skipped; the read loop of the broken connection handles its cleanup.
func (h *Hub) Broadcast(roomID, exceptConnID, event string, data any) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[roomID]))
	for id, c := range h.rooms[roomID] {
		if id == exceptConnID {
			continue
		}
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Send(event, data)
	}
}

// SendToUser sends an event to the connection representing userID in
// the room. Returns false when that user has no connection there.
func (h *Hub) SendToUser(roomID, userID, event string, data any) bool {
	h.mu.RLock()
	connID, ok := h.users[roomID][userID]
	var c Conn
	if ok {
		c, ok = h.rooms[roomID][connID]
	}
	h.mu.RUnlock()

	if !ok || c == nil {
		return false
	}
	_ = c.Send(event, data)
	return true
}

// RoomSize reports the number of connections currently in the room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
