package ai

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

type geminiGenerator struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

// NewGemini builds the primary AI tier on Vertex AI.
func NewGemini(ctx context.Context, projectID, location, modelName string) (Provider, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return NewProvider(&geminiGenerator{client: c, model: c.GenerativeModel(modelName)}), nil
}

func (g *geminiGenerator) Name() string { return "gemini" }

func (g *geminiGenerator) Close() error { return g.client.Close() }

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
				return string(t), nil
			}
		}
	}
	return "", errors.New("gemini: empty response")
}
