package ai

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/models"
)

// Chain tries each tier in order and returns the first success. The
// caller is expected to put Static last, which makes every method
// infallible: an AI outage degrades quality, never availability.
type Chain struct {
	tiers []Provider
	log   *logrus.Logger
}

func NewChain(log *logrus.Logger, tiers ...Provider) *Chain {
	if log == nil {
		log = logrus.New()
	}
	return &Chain{tiers: tiers, log: log}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Close() error {
	var first error
	for _, t := range c.tiers {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Chain) GenerateQuestions(ctx context.Context, jobDescription, resume, interviewType string, count int) ([]QuestionSuggestion, error) {
	var lastErr error
	for _, t := range c.tiers {
		out, err := t.GenerateQuestions(ctx, jobDescription, resume, interviewType, count)
		if err == nil {
			return out, nil
		}
		c.degrade(t, "generate_questions", err)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Chain) ProvideAssistance(ctx context.Context, question, candidateAnswer, jobDescription string) (*Assistance, error) {
	var lastErr error
	for _, t := range c.tiers {
		out, err := t.ProvideAssistance(ctx, question, candidateAnswer, jobDescription)
		if err == nil {
			return out, nil
		}
		c.degrade(t, "provide_assistance", err)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Chain) AnalyzePerformance(ctx context.Context, qa []QA, jobDescription string) (*PerformanceAnalysis, error) {
	var lastErr error
	for _, t := range c.tiers {
		out, err := t.AnalyzePerformance(ctx, qa, jobDescription)
		if err == nil {
			return out, nil
		}
		c.degrade(t, "analyze_performance", err)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Chain) EvaluateMockInterview(ctx context.Context, mi *models.MockInterview) (*MockEvaluation, error) {
	var lastErr error
	for _, t := range c.tiers {
		out, err := t.EvaluateMockInterview(ctx, mi)
		if err == nil {
			return out, nil
		}
		c.degrade(t, "evaluate_mock_interview", err)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Chain) degrade(t Provider, op string, err error) {
	c.log.WithFields(logrus.Fields{
		"provider": t.Name(),
		"op":       op,
	}).WithError(err).Warn("ai provider failed, trying next tier")
}
