package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lanbix/interview-backend/internal/cache"
	"github.com/lanbix/interview-backend/internal/models"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/utils"
)

// InterviewLifecycle derives interview status from participant join and
// leave events: scheduled -> active once both required roles are in,
// active/paused -> completed once both are out. Transitions are
// conditional updates in the store, so concurrent triggers fire each
// transition exactly once and terminal states never regress.
type InterviewLifecycle struct {
	interviews mongorepo.LiveInterviewRepository
}

func NewInterviewLifecycle(interviews mongorepo.LiveInterviewRepository) *InterviewLifecycle {
	return &InterviewLifecycle{interviews: interviews}
}

// RecordJoin stamps the join time for (userID, role) and runs the
// activation check. Returns the fresh document and whether this call
// activated the interview.
func (l *InterviewLifecycle) RecordJoin(ctx context.Context, interviewID, userID string, role models.Role) (*models.LiveInterview, bool, error) {
	const op = "InterviewLifecycle.RecordJoin"

	li, err := l.get(ctx, op, interviewID)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	if p := li.ParticipantByRole(role); p != nil && p.UserID == userID {
		if err := l.interviews.SetJoined(ctx, interviewID, role, now); err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to record join", err)
		}
	}

	activated := false
	if !li.Status.Terminal() {
		activated, err = l.interviews.TransitionToActive(ctx, interviewID, now)
		if err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to run activation check", err)
		}
	}

	fresh, err := l.get(ctx, op, interviewID)
	if err != nil {
		return nil, false, err
	}
	return fresh, activated, nil
}

// RecordLeave stamps the leave time for (userID, role) and runs the
// completion check.
func (l *InterviewLifecycle) RecordLeave(ctx context.Context, interviewID, userID string, role models.Role) (*models.LiveInterview, bool, error) {
	const op = "InterviewLifecycle.RecordLeave"

	li, err := l.get(ctx, op, interviewID)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	if p := li.ParticipantByRole(role); p != nil && p.UserID == userID {
		if err := l.interviews.SetLeft(ctx, interviewID, role, now); err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to record leave", err)
		}
	}

	completed := false
	if !li.Status.Terminal() {
		// startedAt is immutable once set, so reading it before the CAS
		// is race-free; duration stays unset when it is missing.
		completed, err = l.interviews.TransitionToCompleted(ctx, interviewID, now, DurationMinutes(li.StartedAt, now))
		if err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to run completion check", err)
		}
	}

	fresh, err := l.get(ctx, op, interviewID)
	if err != nil {
		return nil, false, err
	}
	return fresh, completed, nil
}

// Cancel is the terminal override, usable from any non-terminal state.
func (l *InterviewLifecycle) Cancel(ctx context.Context, interviewID string) (*models.LiveInterview, error) {
	const op = "InterviewLifecycle.Cancel"

	if _, err := l.interviews.Cancel(ctx, interviewID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to cancel interview", err)
	}
	return l.get(ctx, op, interviewID)
}

func (l *InterviewLifecycle) get(ctx context.Context, op, interviewID string) (*models.LiveInterview, error) {
	li, err := l.interviews.GetByInterviewID(ctx, interviewID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "Interview not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}
	return li, nil
}

// DurationMinutes rounds the elapsed span to whole minutes; -1 means
// unknown (no start timestamp).
func DurationMinutes(startedAt *time.Time, endedAt time.Time) int {
	if startedAt == nil {
		return -1
	}
	return int(math.Round(endedAt.Sub(*startedAt).Minutes()))
}

// RoomLifecycle mirrors the interview state machine for ad-hoc rooms,
// driven by the standalone participant records.
type RoomLifecycle struct {
	rooms        mongorepo.RoomRepository
	participants mongorepo.ParticipantRepository
	cache        cache.Cache
}

func NewRoomLifecycle(rooms mongorepo.RoomRepository, participants mongorepo.ParticipantRepository, c cache.Cache) *RoomLifecycle {
	return &RoomLifecycle{rooms: rooms, participants: participants, cache: c}
}

// invalidate drops the cached room info after a status transition so
// reads do not serve the old status for the rest of the TTL.
func (l *RoomLifecycle) invalidate(ctx context.Context, roomID string) {
	if l.cache != nil {
		_ = l.cache.Del(ctx, roomInfoKey(roomID))
	}
}

// CheckStart activates a scheduled room once both required roles hold a
// joined record.
func (l *RoomLifecycle) CheckStart(ctx context.Context, roomID string) (bool, error) {
	joined, err := l.participants.ListJoined(ctx, roomID)
	if err != nil {
		return false, err
	}
	if !hasRequiredRoles(joined) {
		return false, nil
	}
	started, err := l.rooms.TransitionStatus(ctx, roomID,
		[]models.RoomStatus{models.RoomScheduled}, models.RoomActive)
	if started {
		l.invalidate(ctx, roomID)
	}
	return started, err
}

// CheckCompletion completes a room once every required role that took
// part has left (a leave timestamp and no live record remaining).
func (l *RoomLifecycle) CheckCompletion(ctx context.Context, roomID string) (bool, error) {
	all, err := l.participants.ListByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}

	var candidateOut, interviewerOut bool
	for _, p := range all {
		if p.Status == models.ParticipantJoined && p.Role.Required() {
			return false, nil
		}
		if p.LeftAt == nil {
			continue
		}
		switch p.Role {
		case models.RoleCandidate:
			candidateOut = true
		case models.RoleInterviewer:
			interviewerOut = true
		case models.RoleObserver:
		}
	}
	if !candidateOut || !interviewerOut {
		return false, nil
	}
	completed, err := l.rooms.TransitionStatus(ctx, roomID,
		[]models.RoomStatus{models.RoomScheduled, models.RoomActive}, models.RoomCompleted)
	if completed {
		l.invalidate(ctx, roomID)
	}
	return completed, err
}

func hasRequiredRoles(ps []models.Participant) bool {
	var candidate, interviewer bool
	for _, p := range ps {
		switch p.Role {
		case models.RoleCandidate:
			candidate = true
		case models.RoleInterviewer:
			interviewer = true
		case models.RoleObserver:
		}
	}
	return candidate && interviewer
}
