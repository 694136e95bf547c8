package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanbix/interview-backend/internal/models"
)

// fakeConn records every event sent to it.
type fakeConn struct {
	id string

	mu   sync.Mutex
	sent []sentEvent
}

type sentEvent struct {
	Event string
	Data  any
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{Event: event, Data: data})
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) events() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEvent, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeConn) last() (sentEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEvent{}, false
	}
	return f.sent[len(f.sent)-1], true
}

// lastDecoded unmarshals the last event's data into out. Relays marshal
// payloads before sending, so tests decode through JSON the same way a
// client would.
func (f *fakeConn) lastDecoded(t *testing.T, out any) string {
	t.Helper()
	ev, ok := f.last()
	require.True(t, ok, "no event sent to %s", f.id)
	b, err := json.Marshal(ev.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
	return ev.Event
}

func TestHub_JoinLeave(t *testing.T) {
	h := NewHub()
	c1 := newFakeConn("conn-1")

	h.Join("room-1", c1, Membership{UserID: "u1", Name: "Ana", Role: models.RoleCandidate})
	assert.Equal(t, 1, h.RoomSize("room-1"))

	m, ok := h.Membership("room-1", "conn-1")
	require.True(t, ok)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, models.RoleCandidate, m.Role)

	m, ok = h.Leave("room-1", "conn-1")
	require.True(t, ok)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, 0, h.RoomSize("room-1"))

	_, ok = h.Leave("room-1", "conn-1")
	assert.False(t, ok)
}

func TestHub_DropReturnsAllMemberships(t *testing.T) {
	h := NewHub()
	c := newFakeConn("conn-1")

	h.Join("room-1", c, Membership{UserID: "u1", Role: models.RoleCandidate})
	h.Join("room-2", c, Membership{UserID: "u1", Role: models.RoleObserver})

	got := h.Drop("conn-1")
	require.Len(t, got, 2)
	assert.Equal(t, models.RoleCandidate, got["room-1"].Role)
	assert.Equal(t, models.RoleObserver, got["room-2"].Role)
	assert.Equal(t, 0, h.RoomSize("room-1"))
	assert.Equal(t, 0, h.RoomSize("room-2"))

	assert.Empty(t, h.Drop("conn-1"))
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	h := NewHub()
	c1, c2, c3 := newFakeConn("conn-1"), newFakeConn("conn-2"), newFakeConn("conn-3")
	h.Join("room-1", c1, Membership{UserID: "u1"})
	h.Join("room-1", c2, Membership{UserID: "u2"})
	h.Join("room-1", c3, Membership{UserID: "u3"})

	h.Broadcast("room-1", "conn-1", "participants-update", "payload")

	assert.Empty(t, c1.events())
	require.Len(t, c2.events(), 1)
	require.Len(t, c3.events(), 1)
	assert.Equal(t, "participants-update", c2.events()[0].Event)
}

func TestHub_BroadcastToAll(t *testing.T) {
	h := NewHub()
	c1, c2 := newFakeConn("conn-1"), newFakeConn("conn-2")
	h.Join("room-1", c1, Membership{UserID: "u1"})
	h.Join("room-1", c2, Membership{UserID: "u2"})

	h.Broadcast("room-1", "", "room-status", "payload")

	assert.Len(t, c1.events(), 1)
	assert.Len(t, c2.events(), 1)
}

func TestHub_SendToUser(t *testing.T) {
	h := NewHub()
	c1, c2 := newFakeConn("conn-1"), newFakeConn("conn-2")
	h.Join("room-1", c1, Membership{UserID: "u1"})
	h.Join("room-1", c2, Membership{UserID: "u2"})

	ok := h.SendToUser("room-1", "u2", "signal", "payload")
	require.True(t, ok)
	assert.Empty(t, c1.events())
	require.Len(t, c2.events(), 1)
	assert.Equal(t, "signal", c2.events()[0].Event)

	assert.False(t, h.SendToUser("room-1", "u3", "signal", "payload"))
	assert.False(t, h.SendToUser("room-9", "u1", "signal", "payload"))
}

func TestHub_RejoinReplacesUserConnection(t *testing.T) {
	h := NewHub()
	old := newFakeConn("conn-old")
	fresh := newFakeConn("conn-new")
	h.Join("room-1", old, Membership{UserID: "u1"})
	h.Join("room-1", fresh, Membership{UserID: "u1"})

	ok := h.SendToUser("room-1", "u1", "signal", "payload")
	require.True(t, ok)
	assert.Empty(t, old.events())
	assert.Len(t, fresh.events(), 1)

	// Dropping the stale connection must not break the fresh mapping.
	h.Drop("conn-old")
	ok = h.SendToUser("room-1", "u1", "signal", "payload")
	require.True(t, ok)
	assert.Len(t, fresh.events(), 2)
}
