package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/providers/ai"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/utils"
)

type StartMockParams struct {
	UserID        string
	Position      string
	Level         string
	QuestionCount int
}

type MockInterviewService interface {
	Start(ctx context.Context, p StartMockParams) (*models.MockInterview, error)
	Get(ctx context.Context, userID, id string) (*models.MockInterview, error)
	Answer(ctx context.Context, userID, id string, questionIndex int, answerText string) (*models.MockInterview, error)
	Complete(ctx context.Context, userID, id string) (*models.MockInterview, error)
	List(ctx context.Context, userID string, limit int) ([]models.MockInterview, error)
}

type mockInterviewService struct {
	mocks    mongorepo.MockInterviewRepository
	provider ai.Provider
	log      *logrus.Logger
}

func NewMockInterviewService(mocks mongorepo.MockInterviewRepository, provider ai.Provider, log *logrus.Logger) MockInterviewService {
	return &mockInterviewService{mocks: mocks, provider: provider, log: log}
}

func (s *mockInterviewService) Start(ctx context.Context, p StartMockParams) (*models.MockInterview, error) {
	const op = "MockInterviewService.Start"

	if p.UserID == "" || p.Position == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	switch p.Level {
	case "easy", "medium", "hard":
	case "":
		p.Level = "medium"
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "Level must be easy, medium or hard", nil)
	}
	if p.QuestionCount <= 0 || p.QuestionCount > 20 {
		p.QuestionCount = 5
	}

	suggestions, err := s.provider.GenerateQuestions(ctx, "Position: "+p.Position, "", "mixed", p.QuestionCount)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "AI service unavailable", err)
	}

	questions := make([]models.MockQuestion, 0, len(suggestions))
	for _, q := range suggestions {
		questions = append(questions, models.MockQuestion{
			Text:     q.Question,
			Keywords: q.ExpectedPoints,
		})
	}

	mi := &models.MockInterview{
		UserID:        p.UserID,
		Position:      p.Position,
		Level:         p.Level,
		QuestionCount: len(questions),
		Questions:     questions,
		Answers:       []models.MockAnswer{},
		StartTime:     time.Now().UTC(),
		Status:        models.MockInProgress,
	}
	if err := s.mocks.Create(ctx, mi); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create mock interview", err)
	}
	return mi, nil
}

func (s *mockInterviewService) Get(ctx context.Context, userID, id string) (*models.MockInterview, error) {
	const op = "MockInterviewService.Get"

	mi, err := s.mocks.GetByID(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "Mock interview not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load mock interview", err)
	}
	if mi.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "Mock interview belongs to another user", nil)
	}
	return mi, nil
}

// Answer records or replaces the answer for one question. Re-answering
// the same question overwrites the previous answer in place.
func (s *mockInterviewService) Answer(ctx context.Context, userID, id string, questionIndex int, answerText string) (*models.MockInterview, error) {
	const op = "MockInterviewService.Answer"

	if answerText == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Answer text is required", nil)
	}

	mi, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if mi.Status == models.MockCompleted || mi.Status == models.MockEvaluated {
		return nil, utils.E(utils.CodeConflict, op, "Mock interview already completed", nil)
	}
	if questionIndex < 0 || questionIndex >= len(mi.Questions) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Question index out of range", nil)
	}

	ans := models.MockAnswer{
		QuestionID: questionIndex,
		AnswerText: answerText,
		Timestamp:  time.Now().UTC(),
	}

	existing := -1
	for i, a := range mi.Answers {
		if a.QuestionID == questionIndex {
			existing = i
			break
		}
	}
	if err := s.mocks.SetAnswer(ctx, id, existing, ans, existing < 0); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record answer", err)
	}
	return s.mocks.GetByID(ctx, id)
}

// Complete closes the mock interview and runs the AI evaluation. The
// completion itself never fails on evaluator errors; an unevaluated
// interview stays in completed status.
func (s *mockInterviewService) Complete(ctx context.Context, userID, id string) (*models.MockInterview, error) {
	const op = "MockInterviewService.Complete"

	mi, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if mi.Status == models.MockCompleted || mi.Status == models.MockEvaluated {
		return nil, utils.E(utils.CodeConflict, op, "Mock interview already completed", nil)
	}

	now := time.Now().UTC()
	if err := s.mocks.Complete(ctx, id, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to complete mock interview", err)
	}
	mi.Status = models.MockCompleted
	mi.EndTime = &now

	eval, err := s.provider.EvaluateMockInterview(ctx, mi)
	if err != nil {
		s.log.WithError(err).WithField("mock_id", id).Warn("mock evaluation unavailable")
		return mi, nil
	}
	if err := s.mocks.SetEvaluation(ctx, id, eval.OverallScore, eval.OverallFeedback, eval.QuestionFeedback); err != nil {
		s.log.WithError(err).WithField("mock_id", id).Warn("failed to persist evaluation")
		return mi, nil
	}
	return s.mocks.GetByID(ctx, id)
}

func (s *mockInterviewService) List(ctx context.Context, userID string, limit int) ([]models.MockInterview, error) {
	const op = "MockInterviewService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	items, err := s.mocks.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list mock interviews", err)
	}
	return items, nil
}
