package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/providers/ai"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/storage"
	"github.com/lanbix/interview-backend/internal/utils"
)

type CreateLiveInterviewParams struct {
	Title           string
	JobPosition     string
	Company         string
	InterviewType   string
	Language        string
	JobDescription  string
	MeetingLink     string
	ScheduledTime   time.Time
	CandidateID     string
	CandidateName   string
	CandidateEmail  string
	CandidateResume string
	InterviewerID   string
	InterviewerName string
	AIEnabled       bool
	CreatedBy       string
}

type AskQuestionParams struct {
	InterviewID string
	AskedBy     string
	Question    string
	Category    string
	Difficulty  string
}

type RespondParams struct {
	InterviewID  string
	QuestionID   string
	Response     string
	ResponseTime float64 // seconds
	WithAI       bool
}

type EndInterviewParams struct {
	InterviewID      string
	InterviewerNotes string
	Feedback         string
	FinalVerdict     string
}

type HistoryParams struct {
	UserID string
	Role   models.Role
	Status models.InterviewStatus
	Limit  int
	Page   int
}

type HistoryPage struct {
	Interviews []models.LiveInterview `json:"interviews"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

// LifecycleEvent describes a join or leave that may have fired a status
// transition. The relay broadcasts these to the interview room.
type LifecycleEvent struct {
	Interview    *models.LiveInterview
	Transitioned bool
}

type LiveInterviewService interface {
	Create(ctx context.Context, p CreateLiveInterviewParams) (*models.LiveInterview, error)
	Get(ctx context.Context, interviewID string) (*models.LiveInterview, error)

	Join(ctx context.Context, interviewID, userID string, role models.Role) (*LifecycleEvent, error)
	Leave(ctx context.Context, interviewID, userID string, role models.Role) (*LifecycleEvent, error)
	Cancel(ctx context.Context, interviewID string) (*models.LiveInterview, error)

	AskQuestion(ctx context.Context, p AskQuestionParams) (*models.Question, error)
	Respond(ctx context.Context, p RespondParams) (*models.Question, *ai.Assistance, error)
	GenerateQuestions(ctx context.Context, interviewID string, count int) ([]ai.QuestionSuggestion, error)
	RequestAssistance(ctx context.Context, interviewID, question, candidateAnswer string) (*ai.Assistance, error)
	LogSpeech(ctx context.Context, interviewID string, log models.SpeechLog) error

	End(ctx context.Context, p EndInterviewParams) (*models.LiveInterview, error)
	AnalyzePerformance(ctx context.Context, interviewID string) (*ai.PerformanceAnalysis, error)
	History(ctx context.Context, p HistoryParams) (*HistoryPage, error)
	SaveRecording(ctx context.Context, interviewID, kind, contentType string, r io.Reader) (string, error)

	SetCompletionHook(fn func(ctx context.Context, interviewID string))
}

type liveInterviewService struct {
	interviews mongorepo.LiveInterviewRepository
	lifecycle  *InterviewLifecycle
	provider   ai.Provider
	store      storage.Uploader
	log        *logrus.Logger

	// called after a completion transition fires
	onCompleted func(ctx context.Context, interviewID string)
}

func NewLiveInterviewService(
	interviews mongorepo.LiveInterviewRepository,
	lifecycle *InterviewLifecycle,
	provider ai.Provider,
	store storage.Uploader,
	log *logrus.Logger,
) LiveInterviewService {
	return &liveInterviewService{
		interviews: interviews,
		lifecycle:  lifecycle,
		provider:   provider,
		store:      store,
		log:        log,
	}
}

// newInterviewID mints ids in the live_<hex> form clients key on.
func newInterviewID() string {
	return "live_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *liveInterviewService) Create(ctx context.Context, p CreateLiveInterviewParams) (*models.LiveInterview, error) {
	const op = "LiveInterviewService.Create"

	if p.Title == "" || p.CandidateID == "" || p.InterviewerID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	if p.InterviewType == "" {
		p.InterviewType = "mixed"
	}
	if p.Language == "" {
		p.Language = "en"
	}

	now := time.Now().UTC()
	li := &models.LiveInterview{
		InterviewID:    newInterviewID(),
		Title:          p.Title,
		JobPosition:    p.JobPosition,
		Company:        p.Company,
		InterviewType:  p.InterviewType,
		Language:       p.Language,
		JobDescription: p.JobDescription,
		MeetingLink:    p.MeetingLink,
		ScheduledTime:  p.ScheduledTime.UTC(),
		Status:         models.InterviewScheduled,
		Candidate: models.InterviewParticipant{
			UserID: p.CandidateID,
			Name:   p.CandidateName,
			Email:  p.CandidateEmail,
			Resume: p.CandidateResume,
		},
		Interviewer: models.InterviewParticipant{
			UserID: p.InterviewerID,
			Name:   p.InterviewerName,
		},
		AIAssistance: models.AIAssistance{
			Enabled:   p.AIEnabled,
			Model:     s.provider.Name(),
			Responses: []models.AIResponse{},
		},
		Questions: []models.Question{},
		CreatedBy: p.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.interviews.Create(ctx, li); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}
	return li, nil
}

func (s *liveInterviewService) Get(ctx context.Context, interviewID string) (*models.LiveInterview, error) {
	const op = "LiveInterviewService.Get"
	li, err := s.interviews.GetByInterviewID(ctx, interviewID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "Interview not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}
	return li, nil
}

func (s *liveInterviewService) Join(ctx context.Context, interviewID, userID string, role models.Role) (*LifecycleEvent, error) {
	li, activated, err := s.lifecycle.RecordJoin(ctx, interviewID, userID, role)
	if err != nil {
		return nil, err
	}
	if activated {
		s.log.WithFields(logrus.Fields{
			"interview_id": interviewID,
			"status":       li.Status,
		}).Info("interview activated")
	}
	return &LifecycleEvent{Interview: li, Transitioned: activated}, nil
}

func (s *liveInterviewService) Leave(ctx context.Context, interviewID, userID string, role models.Role) (*LifecycleEvent, error) {
	li, completed, err := s.lifecycle.RecordLeave(ctx, interviewID, userID, role)
	if err != nil {
		return nil, err
	}
	if completed {
		s.log.WithFields(logrus.Fields{
			"interview_id": interviewID,
			"duration":     li.Duration,
		}).Info("interview completed")
		if s.onCompleted != nil {
			s.onCompleted(ctx, interviewID)
		}
	}
	return &LifecycleEvent{Interview: li, Transitioned: completed}, nil
}

// SetCompletionHook registers a callback fired once per completion
// transition, after the status change has been persisted.
func (s *liveInterviewService) SetCompletionHook(fn func(ctx context.Context, interviewID string)) {
	s.onCompleted = fn
}

func (s *liveInterviewService) Cancel(ctx context.Context, interviewID string) (*models.LiveInterview, error) {
	return s.lifecycle.Cancel(ctx, interviewID)
}

func (s *liveInterviewService) AskQuestion(ctx context.Context, p AskQuestionParams) (*models.Question, error) {
	const op = "LiveInterviewService.AskQuestion"

	if p.Question == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Question text is required", nil)
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if p.Difficulty == "" {
		p.Difficulty = "medium"
	}

	q := models.Question{
		QuestionID: uuid.NewString(),
		Question:   p.Question,
		Category:   p.Category,
		Difficulty: p.Difficulty,
		AskedBy:    p.AskedBy,
		AskedAt:    time.Now().UTC(),
	}
	if err := s.interviews.PushQuestion(ctx, p.InterviewID, q); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to record question", err)
	}
	return &q, nil
}

func (s *liveInterviewService) Respond(ctx context.Context, p RespondParams) (*models.Question, *ai.Assistance, error) {
	const op = "LiveInterviewService.Respond"

	li, err := s.Get(ctx, p.InterviewID)
	if err != nil {
		return nil, nil, err
	}
	q := li.FindQuestion(p.QuestionID)
	if q == nil {
		return nil, nil, utils.E(utils.CodeNotFound, op, "Question not found", nil)
	}

	var assist *ai.Assistance
	if p.WithAI && li.AIAssistance.Enabled {
		assist, err = s.provider.ProvideAssistance(ctx, q.Question, p.Response, li.JobDescription)
		if err != nil {
			// assistance is best-effort; the response itself still lands
			s.log.WithError(err).WithField("interview_id", p.InterviewID).Warn("assistance unavailable")
			assist = nil
		}
	}

	var suggestion string
	var score float64
	if assist != nil {
		suggestion = assist.Suggestion
		score = assist.Score
	}
	if err := s.interviews.SetResponse(ctx, p.InterviewID, p.QuestionID, p.Response, p.ResponseTime, suggestion, score); err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to record response", err)
	}
	if assist != nil {
		_ = s.interviews.PushAIResponse(ctx, p.InterviewID, models.AIResponse{
			Question:        q.Question,
			CandidateAnswer: p.Response,
			AISuggestion:    assist.Suggestion,
			Timestamp:       time.Now().UTC(),
			Confidence:      assist.Confidence,
		})
	}

	if err := s.refreshAggregates(ctx, li, p, score, assist != nil); err != nil {
		s.log.WithError(err).WithField("interview_id", p.InterviewID).Warn("failed to refresh performance aggregates")
	}

	q.CandidateResponse = p.Response
	q.ResponseTime = p.ResponseTime
	if assist != nil {
		q.AISuggestion = assist.Suggestion
		q.Score = assist.Score
	}
	return q, assist, nil
}

// refreshAggregates recomputes the running answer counters from the
// pre-response snapshot plus the response that just landed.
func (s *liveInterviewService) refreshAggregates(ctx context.Context, li *models.LiveInterview, p RespondParams, score float64, scored bool) error {
	answered := 1
	var totalTime, totalScore float64
	var scoredCount int

	totalTime = p.ResponseTime
	if scored {
		totalScore = score
		scoredCount = 1
	}
	for i := range li.Questions {
		q := &li.Questions[i]
		if q.QuestionID == p.QuestionID || q.CandidateResponse == "" {
			continue
		}
		answered++
		totalTime += q.ResponseTime
		if q.Score > 0 {
			totalScore += q.Score
			scoredCount++
		}
	}

	perf := models.Performance{
		AnsweredQuestions:   answered,
		AverageResponseTime: totalTime / float64(answered),
	}
	if scoredCount > 0 {
		perf.AverageScore = totalScore / float64(scoredCount)
	}
	return s.interviews.UpdatePerformance(ctx, li.InterviewID, perf)
}

func (s *liveInterviewService) GenerateQuestions(ctx context.Context, interviewID string, count int) ([]ai.QuestionSuggestion, error) {
	const op = "LiveInterviewService.GenerateQuestions"

	li, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 5
	}
	qs, err := s.provider.GenerateQuestions(ctx, li.JobDescription, li.Candidate.Resume, li.InterviewType, count)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "AI service unavailable", err)
	}
	return qs, nil
}

func (s *liveInterviewService) RequestAssistance(ctx context.Context, interviewID, question, candidateAnswer string) (*ai.Assistance, error) {
	const op = "LiveInterviewService.RequestAssistance"

	li, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !li.AIAssistance.Enabled {
		return nil, utils.E(utils.CodeConflict, op, "AI assistance is disabled for this interview", nil)
	}

	assist, err := s.provider.ProvideAssistance(ctx, question, candidateAnswer, li.JobDescription)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "AI service unavailable", err)
	}
	_ = s.interviews.PushAIResponse(ctx, interviewID, models.AIResponse{
		Question:        question,
		CandidateAnswer: candidateAnswer,
		AISuggestion:    assist.Suggestion,
		Timestamp:       time.Now().UTC(),
		Confidence:      assist.Confidence,
	})
	return assist, nil
}

func (s *liveInterviewService) LogSpeech(ctx context.Context, interviewID string, log models.SpeechLog) error {
	const op = "LiveInterviewService.LogSpeech"

	if log.Action == "" {
		return utils.E(utils.CodeInvalidArgument, op, "Speech log action is required", nil)
	}
	if log.LogID == "" {
		log.LogID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	if err := s.interviews.PushSpeechLog(ctx, interviewID, log); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "Interview not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to record speech log", err)
	}
	return nil
}

func (s *liveInterviewService) End(ctx context.Context, p EndInterviewParams) (*models.LiveInterview, error) {
	const op = "LiveInterviewService.End"

	li, err := s.Get(ctx, p.InterviewID)
	if err != nil {
		return nil, err
	}
	if li.Status.Terminal() {
		return nil, utils.E(utils.CodeConflict, op, "Interview already ended", nil)
	}

	now := time.Now().UTC()
	duration := DurationMinutes(li.StartedAt, now)
	ended, err := s.interviews.End(ctx, p.InterviewID, now, duration, p.InterviewerNotes, p.Feedback, p.FinalVerdict)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end interview", err)
	}
	if !ended {
		// lost the race against a concurrent cancel or completion
		return nil, utils.E(utils.CodeConflict, op, "Interview already ended", nil)
	}
	return s.Get(ctx, p.InterviewID)
}

func (s *liveInterviewService) AnalyzePerformance(ctx context.Context, interviewID string) (*ai.PerformanceAnalysis, error) {
	const op = "LiveInterviewService.AnalyzePerformance"

	li, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	qa := make([]ai.QA, 0, len(li.Questions))
	for _, q := range li.Questions {
		if q.CandidateResponse == "" {
			continue
		}
		qa = append(qa, ai.QA{Question: q.Question, Response: q.CandidateResponse})
	}
	if len(qa) == 0 {
		return nil, utils.E(utils.CodeConflict, op, "No answered questions to analyze", nil)
	}

	analysis, err := s.provider.AnalyzePerformance(ctx, qa, li.JobDescription)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "AI service unavailable", err)
	}

	perf := li.Performance
	perf.Strengths = analysis.Strengths
	perf.Weaknesses = analysis.Weaknesses
	perf.OverallRating = analysis.Score
	if err := s.interviews.UpdatePerformance(ctx, interviewID, perf); err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to persist analysis")
	}
	return analysis, nil
}

func (s *liveInterviewService) History(ctx context.Context, p HistoryParams) (*HistoryPage, error) {
	const op = "LiveInterviewService.History"

	if p.UserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	items, total, err := s.interviews.History(ctx, p.UserID, p.Role, p.Status, p.Limit, p.Page)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}
	return &HistoryPage{Interviews: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *liveInterviewService) SaveRecording(ctx context.Context, interviewID, kind, contentType string, r io.Reader) (string, error) {
	const op = "LiveInterviewService.SaveRecording"

	if kind != "screen" && kind != "audio" {
		return "", utils.E(utils.CodeInvalidArgument, op, "Recording kind must be screen or audio", nil)
	}
	if s.store == nil {
		return "", utils.E(utils.CodeUnavailable, op, "Recording storage is not configured", nil)
	}

	object := fmt.Sprintf("recordings/%s/%s-%d", interviewID, kind, time.Now().UTC().UnixMilli())
	url, err := s.store.Upload(ctx, object, contentType, r)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to upload recording", err)
	}
	if err := s.interviews.SetRecording(ctx, interviewID, kind, url); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "Interview not found", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to record upload", err)
	}
	return url, nil
}
