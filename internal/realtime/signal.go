package realtime

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

type signalPayload struct {
	RoomID   string          `json:"roomId"`
	UserID   string          `json:"userId"`
	TargetID string          `json:"targetId,omitempty"`
	Signal   json.RawMessage `json:"signal"`
}

type signalOut struct {
	UserID string          `json:"userId"`
	Signal json.RawMessage `json:"signal"`
}

type errorOut struct {
	Error string `json:"error"`
}

// validSignal checks the minimal payload shape: at least one of the two
// peer-negotiation sub-fields must be present. Payload contents are
// never inspected beyond that.
func validSignal(raw json.RawMessage) bool {
	var probe struct {
		SDP       json.RawMessage `json:"sdp"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return len(probe.SDP) > 0 || len(probe.Candidate) > 0
}

// relaySignal authorizes the sender against the participant tracker and
// forwards the payload verbatim, either to one named peer or to every
// other member of the room. Errors go back to the sender only.
func relaySignal(ctx context.Context, hub *Hub, participants services.ParticipantService, log *logrus.Logger, c Conn, data json.RawMessage) {
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.UserID == "" {
		_ = c.Send("signal-error", errorOut{Error: "Invalid signal format"})
		return
	}

	if _, err := participants.RequireJoined(ctx, p.RoomID, p.UserID); err != nil {
		log.WithFields(logrus.Fields{
			"room_id": p.RoomID,
			"user_id": p.UserID,
		}).Warn("rejected signal from non-joined sender")
		_ = c.Send("signal-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	if !validSignal(p.Signal) {
		_ = c.Send("signal-error", errorOut{Error: "Invalid signal format"})
		return
	}

	out := signalOut{UserID: p.UserID, Signal: p.Signal}
	if p.TargetID != "" {
		if !hub.SendToUser(p.RoomID, p.TargetID, "signal", out) {
			_ = c.Send("signal-error", errorOut{Error: "Target participant not connected"})
		}
		return
	}
	hub.Broadcast(p.RoomID, c.ID(), "signal", out)
}
