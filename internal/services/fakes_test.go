package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

// In-memory repositories mirroring the conditional-update semantics of
// the Mongo implementations.

type fakeInterviewRepo struct {
	mu    sync.Mutex
	store map[string]*models.LiveInterview
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{store: map[string]*models.LiveInterview{}}
}

func (r *fakeInterviewRepo) put(li *models.LiveInterview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *li
	r.store[li.InterviewID] = &cp
}

func (r *fakeInterviewRepo) Create(ctx context.Context, li *models.LiveInterview) error {
	r.put(li)
	return nil
}

func (r *fakeInterviewRepo) GetByInterviewID(ctx context.Context, id string) (*models.LiveInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *li
	return &cp, nil
}

func (r *fakeInterviewRepo) SetJoined(ctx context.Context, id string, role models.Role, at time.Time) error {
	return r.setTime(id, role, at, true)
}

func (r *fakeInterviewRepo) SetLeft(ctx context.Context, id string, role models.Role, at time.Time) error {
	return r.setTime(id, role, at, false)
}

func (r *fakeInterviewRepo) setTime(id string, role models.Role, at time.Time, join bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return utils.ErrNotFound
	}
	p := li.ParticipantByRole(role)
	if p == nil {
		return nil
	}
	t := at
	if join {
		p.JoinedAt = &t
	} else {
		p.LeftAt = &t
	}
	return nil
}

func (r *fakeInterviewRepo) TransitionToActive(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return false, nil
	}
	if li.Status != models.InterviewScheduled || li.Candidate.JoinedAt == nil || li.Interviewer.JoinedAt == nil {
		return false, nil
	}
	t := at
	li.Status = models.InterviewActive
	li.StartedAt = &t
	return true, nil
}

func (r *fakeInterviewRepo) TransitionToCompleted(ctx context.Context, id string, at time.Time, duration int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return false, nil
	}
	if li.Status.Terminal() || li.Candidate.LeftAt == nil || li.Interviewer.LeftAt == nil {
		return false, nil
	}
	t := at
	li.Status = models.InterviewCompleted
	li.EndedAt = &t
	if duration >= 0 {
		li.Duration = duration
	}
	return true, nil
}

func (r *fakeInterviewRepo) Cancel(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok || li.Status.Terminal() {
		return false, nil
	}
	li.Status = models.InterviewCancelled
	return true, nil
}

func (r *fakeInterviewRepo) PushQuestion(ctx context.Context, id string, q models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return utils.ErrNotFound
	}
	li.Questions = append(li.Questions, q)
	li.Performance.TotalQuestions++
	return nil
}

func (r *fakeInterviewRepo) SetResponse(ctx context.Context, id, questionID, response string, responseTime float64, aiSuggestion string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return utils.ErrNotFound
	}
	q := li.FindQuestion(questionID)
	if q == nil {
		return utils.ErrNotFound
	}
	q.CandidateResponse = response
	q.ResponseTime = responseTime
	if aiSuggestion != "" {
		q.AISuggestion = aiSuggestion
		q.Score = score
	}
	return nil
}

func (r *fakeInterviewRepo) PushAIResponse(ctx context.Context, id string, ar models.AIResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if li, ok := r.store[id]; ok {
		li.AIAssistance.Responses = append(li.AIAssistance.Responses, ar)
	}
	return nil
}

func (r *fakeInterviewRepo) PushSpeechLog(ctx context.Context, id string, log models.SpeechLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return utils.ErrNotFound
	}
	li.SpeechLogs = append(li.SpeechLogs, log)
	if len(li.SpeechLogs) > models.MaxSpeechLogs {
		li.SpeechLogs = li.SpeechLogs[len(li.SpeechLogs)-models.MaxSpeechLogs:]
	}
	return nil
}

func (r *fakeInterviewRepo) UpdatePerformance(ctx context.Context, id string, p models.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if li, ok := r.store[id]; ok {
		total := li.Performance.TotalQuestions
		li.Performance = p
		li.Performance.TotalQuestions = total
	}
	return nil
}

func (r *fakeInterviewRepo) SetRecording(ctx context.Context, id, kind, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok {
		return utils.ErrNotFound
	}
	if kind == "audio" {
		li.AudioRecording = models.Recording{Enabled: true, URL: url}
	} else {
		li.ScreenRecording = models.Recording{Enabled: true, URL: url}
	}
	return nil
}

func (r *fakeInterviewRepo) End(ctx context.Context, id string, at time.Time, duration int, notes, feedback, verdict string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	li, ok := r.store[id]
	if !ok || li.Status.Terminal() {
		return false, nil
	}
	t := at
	li.Status = models.InterviewCompleted
	li.EndedAt = &t
	if duration >= 0 {
		li.Duration = duration
	}
	li.InterviewerNotes = notes
	li.CandidateFeedback = feedback
	if verdict != "" {
		li.FinalVerdict = verdict
	}
	return true, nil
}

func (r *fakeInterviewRepo) History(ctx context.Context, userID string, role models.Role, status models.InterviewStatus, limit, page int) ([]models.LiveInterview, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LiveInterview
	for _, li := range r.store {
		switch role {
		case models.RoleCandidate:
			if li.Candidate.UserID != userID {
				continue
			}
		case models.RoleInterviewer:
			if li.Interviewer.UserID != userID {
				continue
			}
		default:
			if li.Candidate.UserID != userID && li.Interviewer.UserID != userID {
				continue
			}
		}
		if status != "" && li.Status != status {
			continue
		}
		out = append(out, *li)
	}
	return out, int64(len(out)), nil
}

func (r *fakeInterviewRepo) CompleteAllActive(ctx context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, li := range r.store {
		if li.Status == models.InterviewActive {
			t := at
			li.Status = models.InterviewCompleted
			li.EndedAt = &t
		}
	}
	return nil
}

type participantKey struct {
	roomID string
	userID string
}

type fakeParticipantRepo struct {
	mu    sync.Mutex
	store map[participantKey]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{store: map[participantKey]*models.Participant{}}
}

func (r *fakeParticipantRepo) UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role, at time.Time) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := participantKey{roomID, userID}
	p, ok := r.store[k]
	if !ok {
		p = &models.Participant{RoomID: roomID, UserID: userID}
		r.store[k] = p
	}
	t := at
	p.Name = name
	p.Role = role
	p.Status = models.ParticipantJoined
	p.JoinedAt = &t
	p.LastActive = &t
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus, at time.Time) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[participantKey{roomID, userID}]
	if !ok {
		return nil, utils.ErrNotFound
	}
	t := at
	p.Status = status
	p.LeftAt = &t
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) FindJoined(ctx context.Context, roomID, userID string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[participantKey{roomID, userID}]
	if !ok || p.Status != models.ParticipantJoined {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) list(roomID string, pred func(*models.Participant) bool) []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Participant
	for k, p := range r.store {
		if k.roomID == roomID && pred(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (r *fakeParticipantRepo) ListActive(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(roomID, func(p *models.Participant) bool {
		return p.Status == models.ParticipantJoined || p.Status == models.ParticipantPending
	}), nil
}

func (r *fakeParticipantRepo) ListJoined(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(roomID, func(p *models.Participant) bool {
		return p.Status == models.ParticipantJoined
	}), nil
}

func (r *fakeParticipantRepo) ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(roomID, func(*models.Participant) bool { return true }), nil
}

func (r *fakeParticipantRepo) MarkAllLeft(ctx context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.store {
		if p.Status == models.ParticipantJoined {
			t := at
			p.Status = models.ParticipantLeft
			p.LeftAt = &t
		}
	}
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	store map[string]*models.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{store: map[string]*models.Room{}}
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *room
	r.store[room.RoomID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.store[roomID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) AddParticipant(ctx context.Context, roomID string, participantID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.store[roomID]
	if !ok {
		return utils.ErrNotFound
	}
	for _, id := range room.ParticipantIDs {
		if id == participantID {
			return nil
		}
	}
	room.ParticipantIDs = append(room.ParticipantIDs, participantID)
	return nil
}

func (r *fakeRoomRepo) TransitionStatus(ctx context.Context, roomID string, from []models.RoomStatus, to models.RoomStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.store[roomID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if room.Status == s {
			room.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeParticipantRepo) count(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.store {
		if k.roomID == roomID {
			n++
		}
	}
	return n
}
