package ai

import (
	"context"

	"github.com/lanbix/interview-backend/internal/models"
)

// Generator produces raw model output for a prompt. Gemini and OpenAI
// both plug in here; the surrounding Provider handles prompts and JSON
// decoding so the two stay interchangeable.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

type llmProvider struct {
	gen Generator
}

// NewProvider wraps a Generator into a full Provider tier.
func NewProvider(gen Generator) Provider {
	return &llmProvider{gen: gen}
}

func (p *llmProvider) Name() string { return p.gen.Name() }

func (p *llmProvider) Close() error { return p.gen.Close() }

func (p *llmProvider) GenerateQuestions(ctx context.Context, jobDescription, resume, interviewType string, count int) ([]QuestionSuggestion, error) {
	raw, err := p.gen.Generate(ctx, questionsPrompt(jobDescription, resume, interviewType, count))
	if err != nil {
		return nil, err
	}
	var out []QuestionSuggestion
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *llmProvider) ProvideAssistance(ctx context.Context, question, candidateAnswer, jobDescription string) (*Assistance, error) {
	raw, err := p.gen.Generate(ctx, assistancePrompt(question, candidateAnswer, jobDescription))
	if err != nil {
		return nil, err
	}
	var out Assistance
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *llmProvider) AnalyzePerformance(ctx context.Context, qa []QA, jobDescription string) (*PerformanceAnalysis, error) {
	raw, err := p.gen.Generate(ctx, performancePrompt(qa, jobDescription))
	if err != nil {
		return nil, err
	}
	var out PerformanceAnalysis
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *llmProvider) EvaluateMockInterview(ctx context.Context, mi *models.MockInterview) (*MockEvaluation, error) {
	raw, err := p.gen.Generate(ctx, mockEvaluationPrompt(mi))
	if err != nil {
		return nil, err
	}
	var out MockEvaluation
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
