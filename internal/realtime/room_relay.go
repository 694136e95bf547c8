package realtime

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

// RoomRelay wires room sockets to the participant tracker and the room
// lifecycle checks. Errors are emitted to the originating connection
// only and never crash the relay.
type RoomRelay struct {
	hub          *Hub
	rooms        services.RoomService
	participants services.ParticipantService
	lifecycle    *services.RoomLifecycle
	log          *logrus.Logger
}

func NewRoomRelay(
	hub *Hub,
	rooms services.RoomService,
	participants services.ParticipantService,
	lifecycle *services.RoomLifecycle,
	log *logrus.Logger,
) *RoomRelay {
	return &RoomRelay{
		hub:          hub,
		rooms:        rooms,
		participants: participants,
		lifecycle:    lifecycle,
		log:          log,
	}
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type leaveRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type roomJoinedOut struct {
	Success      bool                     `json:"success"`
	RoomID       string                   `json:"roomId"`
	UserID       string                   `json:"userId"`
	Status       models.RoomStatus        `json:"status"`
	Participants []models.ParticipantView `json:"participants"`
}

func (r *RoomRelay) Dispatch(ctx context.Context, c Conn, event string, data json.RawMessage) {
	switch event {
	case "join-room":
		r.handleJoin(ctx, c, data)
	case "leave-room":
		r.handleLeave(ctx, c, data)
	case "signal":
		relaySignal(ctx, r.hub, r.participants, r.log, c, data)
	default:
		_ = c.Send("room-error", errorOut{Error: "Unknown event"})
	}
}

func (r *RoomRelay) handleJoin(ctx context.Context, c Conn, data json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil ||
		p.RoomID == "" || p.UserID == "" || p.Name == "" || p.Role == "" {
		_ = c.Send("room-error", errorOut{Error: "Missing required fields"})
		return
	}
	role, err := models.ParseRole(p.Role)
	if err != nil {
		_ = c.Send("room-error", errorOut{Error: "Invalid role"})
		return
	}

	if _, err := r.rooms.Join(ctx, p.RoomID, p.UserID, p.Name, role); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"room_id": p.RoomID,
			"user_id": p.UserID,
		}).Warn("room join failed")
		_ = c.Send("room-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	started, err := r.lifecycle.CheckStart(ctx, p.RoomID)
	if err != nil {
		r.log.WithError(err).WithField("room_id", p.RoomID).Error("room start check failed")
	}

	r.hub.Join(p.RoomID, c, Membership{UserID: p.UserID, Name: p.Name, Role: role})

	info, err := r.rooms.Info(ctx, p.RoomID)
	if err != nil {
		_ = c.Send("room-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	_ = c.Send("room-joined", roomJoinedOut{
		Success:      true,
		RoomID:       p.RoomID,
		UserID:       p.UserID,
		Status:       info.Room.Status,
		Participants: info.Participants,
	})
	r.hub.Broadcast(p.RoomID, c.ID(), "participant-joined", models.ParticipantView{
		UserID: p.UserID, Name: p.Name, Role: role, Status: models.ParticipantJoined,
	})
	r.hub.Broadcast(p.RoomID, c.ID(), "participants-update", info.Participants)

	if started {
		r.hub.Broadcast(p.RoomID, "", "room-status", map[string]any{"status": models.RoomActive})
	}
}

func (r *RoomRelay) handleLeave(ctx context.Context, c Conn, data json.RawMessage) {
	var p leaveRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.UserID == "" {
		_ = c.Send("room-error", errorOut{Error: "Missing required fields"})
		return
	}

	r.hub.Leave(p.RoomID, c.ID())
	r.bookkeepLeave(ctx, p.RoomID, p.UserID, models.ParticipantLeft)
}

// Disconnect performs leave bookkeeping for every room the connection
// had joined. Best-effort: no client remains to receive errors.
func (r *RoomRelay) Disconnect(ctx context.Context, c Conn) {
	for roomID, m := range r.hub.Drop(c.ID()) {
		r.bookkeepLeave(ctx, roomID, m.UserID, models.ParticipantDisconnected)
	}
}

func (r *RoomRelay) bookkeepLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus) {
	if _, err := r.participants.UpsertLeave(ctx, roomID, userID, status); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"room_id": roomID,
			"user_id": userID,
		}).Error("leave bookkeeping failed")
	}

	completed, err := r.lifecycle.CheckCompletion(ctx, roomID)
	if err != nil {
		r.log.WithError(err).WithField("room_id", roomID).Error("room completion check failed")
	}

	views := r.activeViews(ctx, roomID)
	r.hub.Broadcast(roomID, "", "participants-update", views)
	if completed {
		r.hub.Broadcast(roomID, "", "room-status", map[string]any{"status": models.RoomCompleted})
	}
}

func (r *RoomRelay) activeViews(ctx context.Context, roomID string) []models.ParticipantView {
	ps, err := r.participants.ListActive(ctx, roomID)
	if err != nil {
		r.log.WithError(err).WithField("room_id", roomID).Error("failed to list participants")
		return nil
	}
	views := make([]models.ParticipantView, 0, len(ps))
	for _, p := range ps {
		views = append(views, p.View())
	}
	return views
}
