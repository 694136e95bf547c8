package ai

import (
	"context"

	"github.com/lanbix/interview-backend/internal/models"
)

// Static is the last tier: fixed content with neutral scores. It never
// fails, so an exhausted chain still keeps the interview flow moving.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (s *Static) Name() string { return "static" }

func (s *Static) Close() error { return nil }

var cannedQuestions = []QuestionSuggestion{
	{
		Question:       "Explain the difference between REST and GraphQL APIs.",
		Category:       "technical",
		Difficulty:     "medium",
		ExpectedPoints: []string{"REST is resource-based", "GraphQL is query-based", "Performance differences"},
	},
	{
		Question:       "How would you optimize a slow database query?",
		Category:       "technical",
		Difficulty:     "medium",
		ExpectedPoints: []string{"Indexing", "Query optimization", "Database design"},
	},
	{
		Question:       "Tell me about a time you had to resolve a conflict with a team member.",
		Category:       "behavioral",
		Difficulty:     "medium",
		ExpectedPoints: []string{"Situation description", "Actions taken", "Results achieved"},
	},
	{
		Question:       "How do you handle tight deadlines and pressure?",
		Category:       "behavioral",
		Difficulty:     "easy",
		ExpectedPoints: []string{"Time management", "Prioritization", "Stress handling"},
	},
	{
		Question:       "Why are you interested in this position?",
		Category:       "general",
		Difficulty:     "easy",
		ExpectedPoints: []string{"Company interest", "Role alignment", "Career goals"},
	},
	{
		Question:       "Where do you see yourself in 5 years?",
		Category:       "general",
		Difficulty:     "easy",
		ExpectedPoints: []string{"Career progression", "Skill development", "Goals"},
	},
}

func (s *Static) GenerateQuestions(ctx context.Context, jobDescription, resume, interviewType string, count int) ([]QuestionSuggestion, error) {
	if count <= 0 || count > len(cannedQuestions) {
		count = len(cannedQuestions)
	}
	out := make([]QuestionSuggestion, count)
	copy(out, cannedQuestions[:count])
	return out, nil
}

func (s *Static) ProvideAssistance(ctx context.Context, question, candidateAnswer, jobDescription string) (*Assistance, error) {
	return &Assistance{
		Suggestion:   "Unable to generate suggestion at this time.",
		KeyPoints:    []string{},
		Confidence:   0.5,
		Improvements: []string{"Consider providing more specific examples"},
		Score:        5,
	}, nil
}

func (s *Static) AnalyzePerformance(ctx context.Context, qa []QA, jobDescription string) (*PerformanceAnalysis, error) {
	return &PerformanceAnalysis{
		Assessment:       "Unable to analyze performance at this time.",
		Strengths:        []string{},
		Weaknesses:       []string{"Unable to analyze"},
		Score:            5,
		Recommendation:   "consider",
		DetailedFeedback: "Analysis unavailable",
	}, nil
}

func (s *Static) EvaluateMockInterview(ctx context.Context, mi *models.MockInterview) (*MockEvaluation, error) {
	fb := make([]models.QuestionFeedback, len(mi.Questions))
	for i := range fb {
		fb[i] = models.QuestionFeedback{Score: 5, Feedback: "Evaluation unavailable"}
	}
	return &MockEvaluation{
		OverallScore:     50,
		OverallFeedback:  "Automatic evaluation was unavailable for this session.",
		QuestionFeedback: fb,
	}, nil
}
