package rewards

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	defaultClassifyTimeout = 8 * time.Second
	defaultUnit            = "INR"
)

// Classification is a classifier verdict for a merchant string.
type Classification struct {
	Category   Category
	Confidence float64
}

// Classifier turns free-form merchant text into a spend category.
// Implementations are expected to be slow and fallible network calls; the
// engine applies its own timeout on top of the caller's context.
type Classifier interface {
	Classify(ctx context.Context, merchant string) (Classification, error)
}

// Engine orchestrates classification and reward selection for one analyze call.
// It holds no mutable state; every call works off its own inputs.
type Engine struct {
	classifier      Classifier
	classifyTimeout time.Duration
	unit            string
}

// NewEngine builds a recommendation engine. A non-positive timeout and an empty
// unit fall back to 8s and INR.
func NewEngine(classifier Classifier, classifyTimeout time.Duration, unit string) *Engine {
	if classifyTimeout <= 0 {
		classifyTimeout = defaultClassifyTimeout
	}
	if unit == "" {
		unit = defaultUnit
	}
	return &Engine{classifier: classifier, classifyTimeout: classifyTimeout, unit: unit}
}

// AnalyzeInput carries one recommendation request over a wallet snapshot.
type AnalyzeInput struct {
	Merchant string
	Amount   string
	Wallet   []Candidate
}

// EstimatedReward is the decision-time estimate; it is not a settlement amount.
type EstimatedReward struct {
	Value      string
	Unit       string
	Percentage float64
}

// Recommendation is the analyze result. It has no identity or lifecycle beyond
// the response.
type Recommendation struct {
	Category    Category
	Confidence  float64
	Card        Selection
	Estimated   EstimatedReward
	Explanation string
}

// Analyze validates the request, classifies the merchant and picks the best
// card from the wallet. Classifier failures are fatal to the request: guessing
// a category would silently recommend the wrong card.
func (e *Engine) Analyze(ctx context.Context, input AnalyzeInput) (Recommendation, error) {
	merchant := strings.TrimSpace(input.Merchant)
	if merchant == "" {
		return Recommendation{}, &InvalidInputError{Field: "merchant", Reason: "must not be blank"}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(input.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Recommendation{}, &InvalidInputError{Field: "amount", Reason: "must be a decimal number"}
	}
	if amount < 0 {
		return Recommendation{}, &InvalidInputError{Field: "amount", Reason: "must not be negative"}
	}

	classifyCtx, cancel := context.WithTimeout(ctx, e.classifyTimeout)
	defer cancel()

	verdict, err := e.classifier.Classify(classifyCtx, merchant)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		return Recommendation{}, fmt.Errorf("%w after %s", ErrClassifierTimeout, e.classifyTimeout)
	case errors.Is(err, context.Canceled):
		return Recommendation{}, err
	default:
		return Recommendation{}, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	pick, err := Select(verdict.Category, input.Wallet)
	if err != nil {
		return Recommendation{}, err
	}

	percentage := roundHalfUp(pick.Rate * 100)
	return Recommendation{
		Category:   verdict.Category,
		Confidence: verdict.Confidence,
		Card:       pick,
		Estimated: EstimatedReward{
			Value:      strconv.FormatFloat(roundHalfUp(amount*pick.Rate), 'f', 2, 64),
			Unit:       e.unit,
			Percentage: percentage,
		},
		Explanation: fmt.Sprintf("%s falls under %s, where %s earns your wallet's best rate of %s%%.",
			merchant, verdict.Category, pick.Name, strconv.FormatFloat(percentage, 'f', -1, 64)),
	}, nil
}

// roundHalfUp rounds to two decimals, half away from zero. All inputs here are
// non-negative, so this matches currency display conventions.
func roundHalfUp(v float64) float64 {
	return math.Round(v*100) / 100
}
