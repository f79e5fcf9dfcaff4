// Package classify provides implementations of the recommendation engine's
// merchant classifier contract.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cardsavvy/cardsavvy/internal/gemini"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

// ErrUnavailable indicates the hosted model could not produce a verdict.
var ErrUnavailable = errors.New("classification provider unavailable")

// Gemini classifies merchants with a hosted generative model. The prompt pins
// the closed category set and demands bare JSON back.
type Gemini struct {
	client *gemini.Client
}

// NewGemini builds a classifier on top of a shared gemini client.
func NewGemini(client *gemini.Client) *Gemini {
	return &Gemini{client: client}
}

// Classify implements rewards.Classifier.
func (g *Gemini) Classify(ctx context.Context, merchant string) (rewards.Classification, error) {
	text, _, err := g.client.Generate(ctx, classifyPrompt(merchant), false)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return rewards.Classification{}, err
		}
		return rewards.Classification{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var out struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(text)), &out); err != nil {
		return rewards.Classification{}, fmt.Errorf("%w: parse verdict: %w", ErrUnavailable, err)
	}

	// Tolerate a category string outside the closed set; that is a wire-shape
	// quirk, not a provider failure.
	category := rewards.Category(strings.ToLower(strings.TrimSpace(out.Category)))
	if !category.Valid() {
		category = rewards.CategoryOthers
	}

	return rewards.Classification{Category: category, Confidence: clamp01(out.Confidence)}, nil
}

func classifyPrompt(merchant string) string {
	categories := rewards.Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return fmt.Sprintf(
		"Classify this merchant into exactly one spend category and return ONLY JSON.\n"+
			"merchant: %s\n\n"+
			"Allowed categories: %s\n\n"+
			"Required JSON shape:\n"+
			"{\"category\": \"string\", \"confidence\": 0.0}\n\n"+
			"confidence is a number from 0 to 1.",
		merchant, strings.Join(names, ", "))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
