package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardsavvy/cardsavvy/internal/gemini"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

const (
	// fallbackRate is the conservative per-category rate assumed when the
	// extraction reply omits a category.
	fallbackRate = 0.01

	// defaultExtractConfidence is assumed when the reply carries no confidence.
	defaultExtractConfidence = 0.5
)

// GeminiExtractor builds candidate reward schedules from a search-grounded
// generative model call. Results are transient pending entries; persistence
// happens only on user confirmation.
type GeminiExtractor struct {
	client *gemini.Client
}

// NewGeminiExtractor wraps a shared gemini client.
func NewGeminiExtractor(client *gemini.Client) *GeminiExtractor {
	return &GeminiExtractor{client: client}
}

// Extract implements Extractor.
func (g *GeminiExtractor) Extract(ctx context.Context, name, issuer, network string) (Entry, float64, error) {
	text, urls, err := g.client.Generate(ctx, extractionPrompt(name, issuer, network), true)
	if err != nil {
		return Entry{}, 0, err
	}

	var parsed struct {
		CardName    string             `json:"card_name"`
		Issuer      string             `json:"issuer"`
		Network     string             `json:"network"`
		RewardRules map[string]float64 `json:"reward_rules"`
		Confidence  *float64           `json:"confidence"`
		Notes       string             `json:"notes"`
	}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(text)), &parsed); err != nil {
		return Entry{}, 0, fmt.Errorf("parse extraction reply: %w", err)
	}

	rules := make(rewards.Rules, len(rewards.Categories()))
	for _, cat := range rewards.Categories() {
		rate, ok := parsed.RewardRules[string(cat)]
		if !ok {
			rate = fallbackRate
		}
		rules[cat] = clampRate(rate)
	}

	confidence := defaultExtractConfidence
	if parsed.Confidence != nil {
		confidence = clampRate(*parsed.Confidence)
	}

	now := time.Now().UTC()
	entry := Entry{
		ID:       uuid.NewString(),
		CardName: coalesce(parsed.CardName, name),
		Issuer:   coalesce(parsed.Issuer, issuer),
		Network:  coalesce(parsed.Network, network),
		Rules:    rules,
		Source:   SourceWebExtracted,
		Status:   StatusPending,
		Evidence: &Evidence{
			URLs:  urls,
			Notes: coalesce(parsed.Notes, "Extracted from web search."),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return entry, confidence, nil
}

func extractionPrompt(name, issuer, network string) string {
	return fmt.Sprintf(
		"Find rewards details for this credit card using web search and return ONLY JSON.\n"+
			"card_name: %s\nissuer: %s\nnetwork: %s\n\n"+
			"Required JSON shape:\n"+
			"{\n"+
			"  \"card_name\": \"string\",\n"+
			"  \"issuer\": \"string\",\n"+
			"  \"network\": \"string\",\n"+
			"  \"reward_rules\": {\"dining\": 0.00, \"groceries\": 0.00, \"shopping\": 0.00, \"travel\": 0.00, \"fuel\": 0.00, \"utilities\": 0.00, \"entertainment\": 0.00, \"others\": 0.00},\n"+
			"  \"confidence\": 0.0,\n"+
			"  \"notes\": \"string\"\n"+
			"}\n\n"+
			"Use decimal rates from 0 to 1 where 0.05 means 5%%. "+
			"If an exact category value is unknown, use a conservative estimate and mention the uncertainty in notes.",
		name, issuer, network)
}

func clampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
