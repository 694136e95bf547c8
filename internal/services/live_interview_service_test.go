package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/providers/ai"
	"github.com/lanbix/interview-backend/internal/utils"
)

// brokenProvider fails every AI call.
type brokenProvider struct{}

func (brokenProvider) Name() string { return "broken" }
func (brokenProvider) Close() error { return nil }
func (brokenProvider) GenerateQuestions(ctx context.Context, jobDescription, resume, interviewType string, count int) ([]ai.QuestionSuggestion, error) {
	return nil, errors.New("ai down")
}
func (brokenProvider) ProvideAssistance(ctx context.Context, question, candidateAnswer, jobDescription string) (*ai.Assistance, error) {
	return nil, errors.New("ai down")
}
func (brokenProvider) AnalyzePerformance(ctx context.Context, qa []ai.QA, jobDescription string) (*ai.PerformanceAnalysis, error) {
	return nil, errors.New("ai down")
}
func (brokenProvider) EvaluateMockInterview(ctx context.Context, mi *models.MockInterview) (*ai.MockEvaluation, error) {
	return nil, errors.New("ai down")
}

type memUploader struct {
	objects map[string]string
}

func (u *memUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if u.objects == nil {
		u.objects = map[string]string{}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.objects[objectName] = string(b)
	return "mem://" + objectName, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newInterviewService(t *testing.T, provider ai.Provider) (LiveInterviewService, *fakeInterviewRepo, *memUploader) {
	t.Helper()
	repo := newFakeInterviewRepo()
	store := &memUploader{}
	svc := NewLiveInterviewService(repo, NewInterviewLifecycle(repo), provider, store, quietLogger())
	return svc, repo, store
}

func createInterview(t *testing.T, svc LiveInterviewService, aiEnabled bool) *models.LiveInterview {
	t.Helper()
	li, err := svc.Create(context.Background(), CreateLiveInterviewParams{
		Title:           "Backend Engineer Screen",
		JobPosition:     "Backend Engineer",
		CandidateID:     "cand-1",
		CandidateName:   "Ana",
		InterviewerID:   "intv-1",
		InterviewerName: "Ben",
		AIEnabled:       aiEnabled,
		CreatedBy:       "intv-1",
	})
	require.NoError(t, err)
	return li
}

func TestLiveInterview_CreateDefaults(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)

	assert.True(t, strings.HasPrefix(li.InterviewID, "live_"), li.InterviewID)
	assert.Len(t, strings.TrimPrefix(li.InterviewID, "live_"), 32)
	assert.NotContains(t, li.InterviewID, "-")
	assert.Equal(t, models.InterviewScheduled, li.Status)
	assert.Equal(t, "mixed", li.InterviewType)
	assert.Equal(t, "en", li.Language)
	assert.Equal(t, "static", li.AIAssistance.Model)
	assert.True(t, li.AIAssistance.Enabled)

	_, err := svc.Create(context.Background(), CreateLiveInterviewParams{Title: "no people"})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields", utils.UserMessage(err))
}

func TestLiveInterview_AskAndRespond(t *testing.T) {
	svc, repo, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	q, err := svc.AskQuestion(ctx, AskQuestionParams{
		InterviewID: li.InterviewID,
		AskedBy:     "intv-1",
		Question:    "Explain goroutine scheduling.",
	})
	require.NoError(t, err)
	assert.Equal(t, "general", q.Category)
	assert.Equal(t, "medium", q.Difficulty)

	got, assist, err := svc.Respond(ctx, RespondParams{
		InterviewID:  li.InterviewID,
		QuestionID:   q.QuestionID,
		Response:     "The runtime multiplexes goroutines onto OS threads.",
		ResponseTime: 42,
		WithAI:       true,
	})
	require.NoError(t, err)
	require.NotNil(t, assist)
	assert.Equal(t, assist.Suggestion, got.AISuggestion)

	fresh, err := repo.GetByInterviewID(ctx, li.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Performance.TotalQuestions)
	assert.Equal(t, 1, fresh.Performance.AnsweredQuestions)
	assert.Equal(t, float64(42), fresh.Performance.AverageResponseTime)
	assert.Equal(t, float64(5), fresh.Performance.AverageScore)
	require.Len(t, fresh.AIAssistance.Responses, 1)
}

func TestLiveInterview_RespondSurvivesAIFailure(t *testing.T) {
	svc, repo, _ := newInterviewService(t, brokenProvider{})
	li := createInterview(t, svc, true)
	ctx := context.Background()

	q, err := svc.AskQuestion(ctx, AskQuestionParams{
		InterviewID: li.InterviewID, AskedBy: "intv-1", Question: "What is a channel?",
	})
	require.NoError(t, err)

	got, assist, err := svc.Respond(ctx, RespondParams{
		InterviewID: li.InterviewID,
		QuestionID:  q.QuestionID,
		Response:    "A typed conduit.",
		WithAI:      true,
	})
	require.NoError(t, err, "the response must land even when assistance fails")
	assert.Nil(t, assist)
	assert.Empty(t, got.AISuggestion)

	fresh, err := repo.GetByInterviewID(ctx, li.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, "A typed conduit.", fresh.Questions[0].CandidateResponse)
	assert.Empty(t, fresh.AIAssistance.Responses)
}

func TestLiveInterview_RespondUnknownQuestion(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)

	_, _, err := svc.Respond(context.Background(), RespondParams{
		InterviewID: li.InterviewID, QuestionID: "missing", Response: "x",
	})
	require.Error(t, err)
	assert.Equal(t, "Question not found", utils.UserMessage(err))
}

func TestLiveInterview_AssistanceDisabled(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, false)

	_, err := svc.RequestAssistance(context.Background(), li.InterviewID, "q", "a")
	require.Error(t, err)
	assert.Equal(t, "AI assistance is disabled for this interview", utils.UserMessage(err))
}

func TestLiveInterview_EndIsIdempotentConflict(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	ended, err := svc.End(ctx, EndInterviewParams{
		InterviewID:      li.InterviewID,
		InterviewerNotes: "Solid fundamentals.",
		FinalVerdict:     "pass",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCompleted, ended.Status)
	assert.Equal(t, "pass", ended.FinalVerdict)
	require.NotNil(t, ended.EndedAt)

	_, err = svc.End(ctx, EndInterviewParams{InterviewID: li.InterviewID})
	require.Error(t, err)
	assert.Equal(t, "Interview already ended", utils.UserMessage(err))
}

func TestLiveInterview_EndDoesNotOverrideCancel(t *testing.T) {
	svc, repo, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	// cancel lands first; the end write must not fire on a terminal doc
	cancelled, err := repo.Cancel(ctx, li.InterviewID)
	require.NoError(t, err)
	require.True(t, cancelled)

	ended, err := repo.End(ctx, li.InterviewID, time.Now().UTC(), 5, "n", "f", "pass")
	require.NoError(t, err)
	assert.False(t, ended)

	got, err := repo.GetByInterviewID(ctx, li.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCancelled, got.Status)
	assert.Nil(t, got.EndedAt)
	assert.Empty(t, got.FinalVerdict)

	_, err = svc.End(ctx, EndInterviewParams{InterviewID: li.InterviewID})
	require.Error(t, err)
	assert.Equal(t, "Interview already ended", utils.UserMessage(err))
}

func TestLiveInterview_AnalyzeNeedsAnswers(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	_, err := svc.AnalyzePerformance(ctx, li.InterviewID)
	require.Error(t, err)
	assert.Equal(t, "No answered questions to analyze", utils.UserMessage(err))

	q, err := svc.AskQuestion(ctx, AskQuestionParams{
		InterviewID: li.InterviewID, AskedBy: "intv-1", Question: "Describe a race condition.",
	})
	require.NoError(t, err)
	_, _, err = svc.Respond(ctx, RespondParams{
		InterviewID: li.InterviewID, QuestionID: q.QuestionID, Response: "Unsynchronized access.",
	})
	require.NoError(t, err)

	analysis, err := svc.AnalyzePerformance(ctx, li.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, float64(5), analysis.Score)
}

func TestLiveInterview_CompletionHookFires(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	var hooked []string
	svc.SetCompletionHook(func(ctx context.Context, interviewID string) {
		hooked = append(hooked, interviewID)
	})

	_, err := svc.Join(ctx, li.InterviewID, "cand-1", models.RoleCandidate)
	require.NoError(t, err)
	_, err = svc.Join(ctx, li.InterviewID, "intv-1", models.RoleInterviewer)
	require.NoError(t, err)
	_, err = svc.Leave(ctx, li.InterviewID, "cand-1", models.RoleCandidate)
	require.NoError(t, err)
	assert.Empty(t, hooked)

	ev, err := svc.Leave(ctx, li.InterviewID, "intv-1", models.RoleInterviewer)
	require.NoError(t, err)
	require.True(t, ev.Transitioned)
	assert.Equal(t, []string{li.InterviewID}, hooked)
}

func TestLiveInterview_SaveRecording(t *testing.T) {
	svc, repo, store := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	url, err := svc.SaveRecording(ctx, li.InterviewID, "screen", "video/webm", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "mem://recordings/"+li.InterviewID+"/screen-"))
	require.Len(t, store.objects, 1)

	fresh, err := repo.GetByInterviewID(ctx, li.InterviewID)
	require.NoError(t, err)
	assert.True(t, fresh.ScreenRecording.Enabled)
	assert.Equal(t, url, fresh.ScreenRecording.URL)

	_, err = svc.SaveRecording(ctx, li.InterviewID, "hologram", "", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, "Recording kind must be screen or audio", utils.UserMessage(err))
}

func TestLiveInterview_HistoryDefaults(t *testing.T) {
	svc, _, _ := newInterviewService(t, ai.NewStatic())
	createInterview(t, svc, true)
	createInterview(t, svc, true)

	page, err := svc.History(context.Background(), HistoryParams{UserID: "cand-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	_, err = svc.History(context.Background(), HistoryParams{})
	assert.Error(t, err)
}

func TestLiveInterview_LogSpeechValidation(t *testing.T) {
	svc, repo, _ := newInterviewService(t, ai.NewStatic())
	li := createInterview(t, svc, true)
	ctx := context.Background()

	err := svc.LogSpeech(ctx, li.InterviewID, models.SpeechLog{User: "Ana"})
	require.Error(t, err)

	err = svc.LogSpeech(ctx, li.InterviewID, models.SpeechLog{
		Action: "speech_start", User: "Ana", Role: models.RoleCandidate,
	})
	require.NoError(t, err)

	fresh, err := repo.GetByInterviewID(ctx, li.InterviewID)
	require.NoError(t, err)
	require.Len(t, fresh.SpeechLogs, 1)
	assert.NotEmpty(t, fresh.SpeechLogs[0].LogID)
	assert.False(t, fresh.SpeechLogs[0].Timestamp.IsZero())
}
