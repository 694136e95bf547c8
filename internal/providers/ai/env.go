package ai

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// FromEnv builds the provider chain from the environment. Tiers are
// tried in order: Gemini, OpenAI, static fallback. Tiers without
// credentials are skipped; the static tier is always present, so the
// chain never fails outright.
func FromEnv(ctx context.Context, log *logrus.Logger) *Chain {
	var tiers []Provider

	if project := os.Getenv("GOOGLE_PROJECT_ID"); project != "" {
		location := os.Getenv("VERTEX_LOCATION")
		if location == "" {
			location = "us-central1"
		}
		gemini, err := NewGemini(ctx, project, location, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.WithError(err).Warn("gemini provider unavailable")
		} else {
			tiers = append(tiers, gemini)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		tiers = append(tiers, NewOpenAI(key, os.Getenv("OPENAI_MODEL")))
	}

	tiers = append(tiers, NewStatic())
	return NewChain(log, tiers...)
}
