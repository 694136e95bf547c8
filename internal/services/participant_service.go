package services

import (
	"context"
	"errors"
	"time"

	"github.com/lanbix/interview-backend/internal/models"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/utils"
)

// ParticipantService is the tracker for the authoritative per-room
// join/leave records.
type ParticipantService interface {
	UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role) (*models.Participant, error)
	UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus) (*models.Participant, error)
	ListActive(ctx context.Context, roomID string) ([]models.Participant, error)
	ListJoined(ctx context.Context, roomID string) ([]models.Participant, error)
	// RequireJoined returns the live record for (roomID, userID) or an
	// Unauthorized error; used to gate signaling.
	RequireJoined(ctx context.Context, roomID, userID string) (*models.Participant, error)
}

type participantService struct {
	participants mongorepo.ParticipantRepository
}

func NewParticipantService(participants mongorepo.ParticipantRepository) ParticipantService {
	return &participantService{participants: participants}
}

func (s *participantService) UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role) (*models.Participant, error) {
	const op = "ParticipantService.UpsertJoin"

	if roomID == "" || userID == "" || name == "" || role == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}

	p, err := s.participants.UpsertJoin(ctx, roomID, userID, name, role, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record join", err)
	}
	return p, nil
}

func (s *participantService) UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus) (*models.Participant, error) {
	const op = "ParticipantService.UpsertLeave"

	if roomID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	if status != models.ParticipantLeft && status != models.ParticipantDisconnected {
		status = models.ParticipantLeft
	}

	p, err := s.participants.UpsertLeave(ctx, roomID, userID, status, time.Now().UTC())
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "participant not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record leave", err)
	}
	return p, nil
}

func (s *participantService) ListActive(ctx context.Context, roomID string) ([]models.Participant, error) {
	const op = "ParticipantService.ListActive"

	out, err := s.participants.ListActive(ctx, roomID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list participants", err)
	}
	return out, nil
}

func (s *participantService) ListJoined(ctx context.Context, roomID string) ([]models.Participant, error) {
	const op = "ParticipantService.ListJoined"

	out, err := s.participants.ListJoined(ctx, roomID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list participants", err)
	}
	return out, nil
}

func (s *participantService) RequireJoined(ctx context.Context, roomID, userID string) (*models.Participant, error) {
	const op = "ParticipantService.RequireJoined"

	p, err := s.participants.FindJoined(ctx, roomID, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeUnauthorized, op, "Unauthorized signaling attempt", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up participant", err)
	}
	return p, nil
}
