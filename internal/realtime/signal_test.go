package realtime

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

// fakeParticipants implements services.ParticipantService over a set of
// joined (roomID, userID) pairs.
type fakeParticipants struct {
	joined map[[2]string]*models.Participant
}

func newFakeParticipants() *fakeParticipants {
	return &fakeParticipants{joined: map[[2]string]*models.Participant{}}
}

func (f *fakeParticipants) join(roomID, userID, name string, role models.Role) {
	f.joined[[2]string{roomID, userID}] = &models.Participant{
		RoomID: roomID, UserID: userID, Name: name, Role: role,
		Status: models.ParticipantJoined,
	}
}

func (f *fakeParticipants) UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role) (*models.Participant, error) {
	f.join(roomID, userID, name, role)
	return f.joined[[2]string{roomID, userID}], nil
}

func (f *fakeParticipants) UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus) (*models.Participant, error) {
	p, ok := f.joined[[2]string{roomID, userID}]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, "fake", "participant not found", utils.ErrNotFound)
	}
	delete(f.joined, [2]string{roomID, userID})
	p.Status = status
	return p, nil
}

func (f *fakeParticipants) ListActive(ctx context.Context, roomID string) ([]models.Participant, error) {
	return f.ListJoined(ctx, roomID)
}

func (f *fakeParticipants) ListJoined(ctx context.Context, roomID string) ([]models.Participant, error) {
	var out []models.Participant
	for k, p := range f.joined {
		if k[0] == roomID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParticipants) RequireJoined(ctx context.Context, roomID, userID string) (*models.Participant, error) {
	p, ok := f.joined[[2]string{roomID, userID}]
	if !ok {
		return nil, utils.E(utils.CodeUnauthorized, "fake", "Unauthorized signaling attempt", utils.ErrNotFound)
	}
	return p, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func signalData(t *testing.T, roomID, userID, targetID string, signal string) json.RawMessage {
	t.Helper()
	payload := map[string]any{
		"roomId": roomID,
		"userId": userID,
		"signal": json.RawMessage(signal),
	}
	if targetID != "" {
		payload["targetId"] = targetID
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return b
}

func TestRelaySignal_BroadcastsToOthers(t *testing.T) {
	hub := NewHub()
	parts := newFakeParticipants()
	sender := newFakeConn("conn-1")
	peer := newFakeConn("conn-2")

	parts.join("room-1", "u1", "Ana", models.RoleCandidate)
	parts.join("room-1", "u2", "Ben", models.RoleInterviewer)
	hub.Join("room-1", sender, Membership{UserID: "u1"})
	hub.Join("room-1", peer, Membership{UserID: "u2"})

	relaySignal(context.Background(), hub, parts, testLogger(), sender,
		signalData(t, "room-1", "u1", "", `{"sdp":{"type":"offer"}}`))

	assert.Empty(t, sender.events(), "sender must not receive its own signal")
	require.Len(t, peer.events(), 1)
	assert.Equal(t, "signal", peer.events()[0].Event)

	var out signalOut
	peer.lastDecoded(t, &out)
	assert.Equal(t, "u1", out.UserID)
	assert.JSONEq(t, `{"sdp":{"type":"offer"}}`, string(out.Signal))
}

func TestRelaySignal_TargetedDelivery(t *testing.T) {
	hub := NewHub()
	parts := newFakeParticipants()
	sender := newFakeConn("conn-1")
	target := newFakeConn("conn-2")
	bystander := newFakeConn("conn-3")

	parts.join("room-1", "u1", "Ana", models.RoleCandidate)
	hub.Join("room-1", sender, Membership{UserID: "u1"})
	hub.Join("room-1", target, Membership{UserID: "u2"})
	hub.Join("room-1", bystander, Membership{UserID: "u3"})

	relaySignal(context.Background(), hub, parts, testLogger(), sender,
		signalData(t, "room-1", "u1", "u2", `{"candidate":{"sdpMid":"0"}}`))

	require.Len(t, target.events(), 1)
	assert.Empty(t, bystander.events())
	assert.Empty(t, sender.events())
}

func TestRelaySignal_TargetNotConnected(t *testing.T) {
	hub := NewHub()
	parts := newFakeParticipants()
	sender := newFakeConn("conn-1")

	parts.join("room-1", "u1", "Ana", models.RoleCandidate)
	hub.Join("room-1", sender, Membership{UserID: "u1"})

	relaySignal(context.Background(), hub, parts, testLogger(), sender,
		signalData(t, "room-1", "u1", "u9", `{"sdp":{}}`))

	var out errorOut
	ev := sender.lastDecoded(t, &out)
	assert.Equal(t, "signal-error", ev)
	assert.Equal(t, "Target participant not connected", out.Error)
}

func TestRelaySignal_RejectsNonJoinedSender(t *testing.T) {
	hub := NewHub()
	parts := newFakeParticipants()
	sender := newFakeConn("conn-1")
	peer := newFakeConn("conn-2")

	// Sender holds a hub connection but never registered as joined in
	// the tracker.
	hub.Join("room-1", sender, Membership{UserID: "u1"})
	hub.Join("room-1", peer, Membership{UserID: "u2"})

	relaySignal(context.Background(), hub, parts, testLogger(), sender,
		signalData(t, "room-1", "u1", "", `{"sdp":{}}`))

	var out errorOut
	ev := sender.lastDecoded(t, &out)
	assert.Equal(t, "signal-error", ev)
	assert.Equal(t, "Unauthorized signaling attempt", out.Error)
	assert.Empty(t, peer.events(), "signal must not be forwarded")
}

func TestRelaySignal_InvalidFormat(t *testing.T) {
	hub := NewHub()
	parts := newFakeParticipants()
	parts.join("room-1", "u1", "Ana", models.RoleCandidate)

	cases := []struct {
		name string
		data json.RawMessage
	}{
		{"malformed json", json.RawMessage(`{`)},
		{"missing room", signalData(t, "", "u1", "", `{"sdp":{}}`)},
		{"missing user", signalData(t, "room-1", "", "", `{"sdp":{}}`)},
		{"no sdp or candidate", signalData(t, "room-1", "u1", "", `{"foo":1}`)},
		{"signal not an object", signalData(t, "room-1", "u1", "", `"hello"`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := newFakeConn("conn-1")
			hub.Join("room-1", sender, Membership{UserID: "u1"})

			relaySignal(context.Background(), hub, parts, testLogger(), sender, tc.data)

			var out errorOut
			ev := sender.lastDecoded(t, &out)
			assert.Equal(t, "signal-error", ev)
			assert.Equal(t, "Invalid signal format", out.Error)
		})
	}
}

func TestValidSignal(t *testing.T) {
	assert.True(t, validSignal(json.RawMessage(`{"sdp":{"type":"answer"}}`)))
	assert.True(t, validSignal(json.RawMessage(`{"candidate":{"sdpMid":"0"}}`)))
	assert.False(t, validSignal(json.RawMessage(`{}`)))
	assert.False(t, validSignal(json.RawMessage(`null`)))
	assert.False(t, validSignal(nil))
}
