package ai

import (
	"context"

	"github.com/lanbix/interview-backend/internal/models"
)

// QuestionSuggestion is one generated interview question.
type QuestionSuggestion struct {
	Question       string   `json:"question"`
	Category       string   `json:"category"`   // technical|behavioral|general
	Difficulty     string   `json:"difficulty"` // easy|medium|hard
	ExpectedPoints []string `json:"expectedPoints,omitempty"`
}

// Assistance is the analysis of a single candidate answer.
type Assistance struct {
	Suggestion   string   `json:"suggestion"`
	KeyPoints    []string `json:"keyPoints,omitempty"`
	Confidence   float64  `json:"confidence"` // 0-1
	Improvements []string `json:"improvements,omitempty"`
	Score        float64  `json:"score"` // 0-10
}

// PerformanceAnalysis is the whole-interview verdict.
type PerformanceAnalysis struct {
	Assessment       string   `json:"assessment"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Score            float64  `json:"score"` // 1-10
	Recommendation   string   `json:"recommendation"`
	DetailedFeedback string   `json:"detailedFeedback,omitempty"`
}

// MockEvaluation scores a finished mock interview.
type MockEvaluation struct {
	OverallScore     float64                   `json:"overallScore"` // 0-100
	OverallFeedback  string                    `json:"overallFeedback"`
	QuestionFeedback []models.QuestionFeedback `json:"questionFeedback"`
}

// Provider is one tier of the assistance strategy. Implementations must
// be safe for concurrent use.
type Provider interface {
	Name() string
	GenerateQuestions(ctx context.Context, jobDescription, resume, interviewType string, count int) ([]QuestionSuggestion, error)
	ProvideAssistance(ctx context.Context, question, candidateAnswer, jobDescription string) (*Assistance, error)
	AnalyzePerformance(ctx context.Context, qa []QA, jobDescription string) (*PerformanceAnalysis, error)
	EvaluateMockInterview(ctx context.Context, mi *models.MockInterview) (*MockEvaluation, error)
	Close() error
}

// QA pairs a question with the candidate's response for analysis.
type QA struct {
	Question string
	Response string
}
