package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lanbix/interview-backend/internal/cache"
	"github.com/lanbix/interview-backend/internal/models"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/utils"
)

type CreateRoomParams struct {
	Title           string
	JobPosition     string
	InterviewType   string
	InterviewMode   string
	TimeLimit       int
	MaxParticipants int
	ScheduledTime   time.Time
	CustomQuestions []string
	InterviewerID   string
	InterviewerName string
}

type RoomInfo struct {
	Room         *models.Room             `json:"room"`
	Participants []models.ParticipantView `json:"participants"`
}

type RoomService interface {
	Create(ctx context.Context, p CreateRoomParams) (*models.Room, error)
	Join(ctx context.Context, roomID, userID, name string, role models.Role) (*models.Participant, error)
	Info(ctx context.Context, roomID string) (*RoomInfo, error)
}

type roomService struct {
	rooms        mongorepo.RoomRepository
	participants mongorepo.ParticipantRepository
	cache        cache.Cache
}

const roomInfoTTL = 30 * time.Second

func NewRoomService(rooms mongorepo.RoomRepository, participants mongorepo.ParticipantRepository, c cache.Cache) RoomService {
	return &roomService{rooms: rooms, participants: participants, cache: c}
}

func (s *roomService) Create(ctx context.Context, p CreateRoomParams) (*models.Room, error) {
	const op = "RoomService.Create"

	if p.InterviewType == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Interview type is required", nil)
	}
	if p.InterviewerID == "" || p.InterviewerName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interviewer id and name are required", nil)
	}

	room := &models.Room{
		RoomID:          uuid.NewString(),
		Title:           p.Title,
		JobPosition:     p.JobPosition,
		InterviewType:   p.InterviewType,
		InterviewMode:   p.InterviewMode,
		TimeLimit:       p.TimeLimit,
		MaxParticipants: p.MaxParticipants,
		ScheduledTime:   p.ScheduledTime.UTC(),
		CustomQuestions: p.CustomQuestions,
		Status:          models.RoomScheduled,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create room", err)
	}

	// interviewer is the first participant
	participant, err := s.participants.UpsertJoin(ctx, room.RoomID, p.InterviewerID, p.InterviewerName, models.RoleInterviewer, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to register interviewer", err)
	}
	if err := s.rooms.AddParticipant(ctx, room.RoomID, participant.ID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to link interviewer", err)
	}

	return room, nil
}

func (s *roomService) Join(ctx context.Context, roomID, userID, name string, role models.Role) (*models.Participant, error) {
	const op = "RoomService.Join"

	if roomID == "" || userID == "" || name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	if role == "" {
		role = models.RoleCandidate
	}

	if _, err := s.rooms.GetByRoomID(ctx, roomID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Room not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load room", err)
	}

	participant, err := s.participants.UpsertJoin(ctx, roomID, userID, name, role, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to join room", err)
	}
	if err := s.rooms.AddParticipant(ctx, roomID, participant.ID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to link participant", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, roomInfoKey(roomID))
	}
	return participant, nil
}

func (s *roomService) Info(ctx context.Context, roomID string) (*RoomInfo, error) {
	const op = "RoomService.Info"

	if s.cache != nil {
		var cached RoomInfo
		if hit, _ := s.cache.GetJSON(ctx, roomInfoKey(roomID), &cached); hit {
			return &cached, nil
		}
	}

	room, err := s.rooms.GetByRoomID(ctx, roomID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "Room not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load room", err)
	}

	ps, err := s.participants.ListActive(ctx, roomID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list participants", err)
	}

	views := make([]models.ParticipantView, 0, len(ps))
	for _, p := range ps {
		views = append(views, p.View())
	}

	info := &RoomInfo{Room: room, Participants: views}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, roomInfoKey(roomID), info, roomInfoTTL)
	}
	return info, nil
}

func roomInfoKey(roomID string) string { return "room:" + roomID + ":info" }
