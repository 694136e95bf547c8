package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

// InterviewRelay is the live-interview variant of the room relay. On
// top of membership and signaling it forwards question, response,
// assistance and speech-log traffic, and drives the interview lifecycle
// from join/leave events.
type InterviewRelay struct {
	hub          *Hub
	interviews   services.LiveInterviewService
	participants services.ParticipantService
	log          *logrus.Logger
}

func NewInterviewRelay(
	hub *Hub,
	interviews services.LiveInterviewService,
	participants services.ParticipantService,
	log *logrus.Logger,
) *InterviewRelay {
	return &InterviewRelay{
		hub:          hub,
		interviews:   interviews,
		participants: participants,
		log:          log,
	}
}

type joinInterviewPayload struct {
	InterviewID string `json:"interviewId"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}

type leaveInterviewPayload struct {
	InterviewID string `json:"interviewId"`
	UserID      string `json:"userId"`
}

type askQuestionPayload struct {
	InterviewID string `json:"interviewId"`
	UserID      string `json:"userId"`
	Question    string `json:"question"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

type candidateResponsePayload struct {
	InterviewID  string  `json:"interviewId"`
	UserID       string  `json:"userId"`
	QuestionID   string  `json:"questionId"`
	Response     string  `json:"response"`
	ResponseTime float64 `json:"responseTime"`
}

type assistancePayload struct {
	InterviewID     string `json:"interviewId"`
	UserID          string `json:"userId"`
	Question        string `json:"question"`
	CandidateAnswer string `json:"candidateAnswer"`
}

type speechLogPayload struct {
	InterviewID string         `json:"interviewId"`
	UserID      string         `json:"userId"`
	Action      string         `json:"action"`
	Text        string         `json:"text"`
	Details     map[string]any `json:"details"`
}

type interviewJoinedOut struct {
	Success      bool                     `json:"success"`
	InterviewID  string                   `json:"interviewId"`
	UserID       string                   `json:"userId"`
	Status       models.InterviewStatus   `json:"status"`
	Questions    []models.Question        `json:"questions"`
	Participants []models.ParticipantView `json:"participants"`
}

type interviewUpdateOut struct {
	InterviewID string                 `json:"interviewId"`
	Status      models.InterviewStatus `json:"status"`
	StartedAt   *time.Time             `json:"startedAt,omitempty"`
	EndedAt     *time.Time             `json:"endedAt,omitempty"`
	// pointer so a 0-minute interview still reports its duration
	Duration *int `json:"duration,omitempty"`
}

func (r *InterviewRelay) Dispatch(ctx context.Context, c Conn, event string, data json.RawMessage) {
	switch event {
	case "join-interview":
		r.handleJoin(ctx, c, data)
	case "leave-interview":
		r.handleLeave(ctx, c, data)
	case "signal":
		relaySignal(ctx, r.hub, r.participants, r.log, c, data)
	case "ask-question":
		r.handleAskQuestion(ctx, c, data)
	case "candidate-response":
		r.handleResponse(ctx, c, data)
	case "request-ai-assistance":
		r.handleAssistance(ctx, c, data)
	case "speech-log":
		r.handleSpeechLog(ctx, c, data)
	default:
		_ = c.Send("interview-error", errorOut{Error: "Unknown event"})
	}
}

func (r *InterviewRelay) handleJoin(ctx context.Context, c Conn, data json.RawMessage) {
	var p joinInterviewPayload
	if err := json.Unmarshal(data, &p); err != nil ||
		p.InterviewID == "" || p.UserID == "" || p.Name == "" || p.Role == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}
	role, err := models.ParseRole(p.Role)
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: "Invalid role"})
		return
	}

	if _, err := r.participants.UpsertJoin(ctx, p.InterviewID, p.UserID, p.Name, role); err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	ev, err := r.interviews.Join(ctx, p.InterviewID, p.UserID, role)
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	r.hub.Join(p.InterviewID, c, Membership{UserID: p.UserID, Name: p.Name, Role: role})

	views := r.activeViews(ctx, p.InterviewID)
	_ = c.Send("interview-joined", interviewJoinedOut{
		Success:      true,
		InterviewID:  p.InterviewID,
		UserID:       p.UserID,
		Status:       ev.Interview.Status,
		Questions:    ev.Interview.Questions,
		Participants: views,
	})
	r.hub.Broadcast(p.InterviewID, c.ID(), "participants-update", views)

	if ev.Transitioned {
		r.hub.Broadcast(p.InterviewID, "", "interview-update", interviewUpdateOut{
			InterviewID: p.InterviewID,
			Status:      ev.Interview.Status,
			StartedAt:   ev.Interview.StartedAt,
		})
	}
}

func (r *InterviewRelay) handleLeave(ctx context.Context, c Conn, data json.RawMessage) {
	var p leaveInterviewPayload
	if err := json.Unmarshal(data, &p); err != nil || p.InterviewID == "" || p.UserID == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}

	m, ok := r.hub.Leave(p.InterviewID, c.ID())
	role := models.RoleObserver
	if ok {
		role = m.Role
	}
	r.bookkeepLeave(ctx, p.InterviewID, p.UserID, role, models.ParticipantLeft)
}

// Disconnect performs leave bookkeeping for every interview room the
// connection had joined. Best-effort.
func (r *InterviewRelay) Disconnect(ctx context.Context, c Conn) {
	for interviewID, m := range r.hub.Drop(c.ID()) {
		r.bookkeepLeave(ctx, interviewID, m.UserID, m.Role, models.ParticipantDisconnected)
	}
}

func (r *InterviewRelay) bookkeepLeave(ctx context.Context, interviewID, userID string, role models.Role, status models.ParticipantStatus) {
	if _, err := r.participants.UpsertLeave(ctx, interviewID, userID, status); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"interview_id": interviewID,
			"user_id":      userID,
		}).Error("leave bookkeeping failed")
	}

	ev, err := r.interviews.Leave(ctx, interviewID, userID, role)
	if err != nil {
		r.log.WithError(err).WithField("interview_id", interviewID).Error("interview leave failed")
	}

	r.hub.Broadcast(interviewID, "", "participants-update", r.activeViews(ctx, interviewID))
	if ev != nil && ev.Transitioned {
		upd := interviewUpdateOut{
			InterviewID: interviewID,
			Status:      ev.Interview.Status,
			EndedAt:     ev.Interview.EndedAt,
		}
		if ev.Interview.StartedAt != nil {
			d := ev.Interview.Duration
			upd.Duration = &d
		}
		r.hub.Broadcast(interviewID, "", "interview-update", upd)
	}
}

func (r *InterviewRelay) handleAskQuestion(ctx context.Context, c Conn, data json.RawMessage) {
	var p askQuestionPayload
	if err := json.Unmarshal(data, &p); err != nil || p.InterviewID == "" || p.UserID == "" || p.Question == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}
	if _, err := r.participants.RequireJoined(ctx, p.InterviewID, p.UserID); err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	q, err := r.interviews.AskQuestion(ctx, services.AskQuestionParams{
		InterviewID: p.InterviewID,
		AskedBy:     p.UserID,
		Question:    p.Question,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
	})
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}
	r.hub.Broadcast(p.InterviewID, "", "question-asked", q)
}

func (r *InterviewRelay) handleResponse(ctx context.Context, c Conn, data json.RawMessage) {
	var p candidateResponsePayload
	if err := json.Unmarshal(data, &p); err != nil || p.InterviewID == "" || p.UserID == "" || p.QuestionID == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}
	if _, err := r.participants.RequireJoined(ctx, p.InterviewID, p.UserID); err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	q, assist, err := r.interviews.Respond(ctx, services.RespondParams{
		InterviewID:  p.InterviewID,
		QuestionID:   p.QuestionID,
		Response:     p.Response,
		ResponseTime: p.ResponseTime,
		WithAI:       true,
	})
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	r.hub.Broadcast(p.InterviewID, "", "response-recorded", q)
	if assist != nil {
		// suggestions go to the interviewer side only
		r.hub.Broadcast(p.InterviewID, c.ID(), "ai-assistance", assist)
	}
}

func (r *InterviewRelay) handleAssistance(ctx context.Context, c Conn, data json.RawMessage) {
	var p assistancePayload
	if err := json.Unmarshal(data, &p); err != nil || p.InterviewID == "" || p.UserID == "" || p.Question == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}
	if _, err := r.participants.RequireJoined(ctx, p.InterviewID, p.UserID); err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	assist, err := r.interviews.RequestAssistance(ctx, p.InterviewID, p.Question, p.CandidateAnswer)
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}
	_ = c.Send("ai-assistance", assist)
}

func (r *InterviewRelay) handleSpeechLog(ctx context.Context, c Conn, data json.RawMessage) {
	var p speechLogPayload
	if err := json.Unmarshal(data, &p); err != nil || p.InterviewID == "" || p.UserID == "" || p.Action == "" {
		_ = c.Send("interview-error", errorOut{Error: "Missing required fields"})
		return
	}
	m, err := r.participants.RequireJoined(ctx, p.InterviewID, p.UserID)
	if err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}

	log := models.SpeechLog{
		Timestamp: time.Now().UTC(),
		Action:    p.Action,
		Text:      p.Text,
		Details:   p.Details,
		User:      m.Name,
		Role:      m.Role,
	}
	if err := r.interviews.LogSpeech(ctx, p.InterviewID, log); err != nil {
		_ = c.Send("interview-error", errorOut{Error: utils.UserMessage(err)})
		return
	}
	r.hub.Broadcast(p.InterviewID, c.ID(), "speech-log-broadcast", log)
}

func (r *InterviewRelay) activeViews(ctx context.Context, interviewID string) []models.ParticipantView {
	ps, err := r.participants.ListActive(ctx, interviewID)
	if err != nil {
		r.log.WithError(err).WithField("interview_id", interviewID).Error("failed to list participants")
		return nil
	}
	views := make([]models.ParticipantView, 0, len(ps))
	for _, p := range ps {
		views = append(views, p.View())
	}
	return views
}
