package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

// Result statuses, used as the wire discriminator.
const (
	StatusFoundVerified     = "found_verified"
	StatusNeedsConfirmation = "needs_confirmation"
)

// Result is the lookup outcome: either a verified catalog hit or a candidate
// awaiting human confirmation. Candidates are transient; nothing is persisted
// by a lookup.
type Result struct {
	Status        string
	Card          Entry // set when Status == StatusFoundVerified
	Candidate     Entry // set when Status == StatusNeedsConfirmation
	Confidence    float64
	ExtractedFrom []string
}

// Matcher scores how close a catalog entry is to a lookup query, in [0,1].
// The scoring function is a product decision, so it is pluggable.
type Matcher interface {
	Score(queryName, queryIssuer string, entry Entry) float64
}

// LevenshteinMatcher scores entries by normalized edit-distance similarity
// over the combined "name issuer" string.
type LevenshteinMatcher struct{}

// Score implements Matcher.
func (LevenshteinMatcher) Score(queryName, queryIssuer string, entry Entry) float64 {
	q := normalizeText(queryName + " " + queryIssuer)
	e := normalizeText(entry.CardName + " " + entry.Issuer)
	if q == e {
		return 1
	}
	longest := len([]rune(q))
	if l := len([]rune(e)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(q, e))/float64(longest)
}

// Extractor produces a candidate entry for a card the catalog does not know,
// along with an advisory confidence.
type Extractor interface {
	Extract(ctx context.Context, name, issuer, network string) (Entry, float64, error)
}

const defaultFuzzyThreshold = 0.82

// LookupService resolves a user-typed card name and issuer against the
// catalog. It never admits anything itself: confirmation and admission belong
// to the verification workflow.
type LookupService struct {
	repo      Repository
	matcher   Matcher
	extractor Extractor // optional; lookups beyond the catalog fail without it
	threshold float64
	logger    *slog.Logger
}

// NewLookupService builds a lookup service. A nil matcher falls back to
// levenshtein similarity with the default threshold.
func NewLookupService(repo Repository, matcher Matcher, extractor Extractor, logger *slog.Logger) *LookupService {
	if matcher == nil {
		matcher = LevenshteinMatcher{}
	}
	return &LookupService{
		repo:      repo,
		matcher:   matcher,
		extractor: extractor,
		threshold: defaultFuzzyThreshold,
		logger:    logger,
	}
}

// Lookup tries, in order: exact verified match, fuzzy verified match, an
// already-confirmed pending candidate (idempotent read), and finally web
// extraction. ErrNotFound when none of those produce anything.
func (s *LookupService) Lookup(ctx context.Context, name, issuer, network string) (Result, error) {
	name = strings.TrimSpace(name)
	issuer = strings.TrimSpace(issuer)
	if name == "" {
		return Result{}, &rewards.InvalidInputError{Field: "card_name", Reason: "must not be blank"}
	}
	if issuer == "" {
		return Result{}, &rewards.InvalidInputError{Field: "issuer", Reason: "must not be blank"}
	}

	entry, err := s.repo.FindVerified(ctx, name, issuer)
	if err == nil {
		return Result{Status: StatusFoundVerified, Card: entry}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Result{}, err
	}

	verified, err := s.repo.ListByStatus(ctx, StatusVerified)
	if err != nil {
		return Result{}, err
	}
	var best Entry
	bestScore := 0.0
	for _, candidate := range verified {
		if score := s.matcher.Score(name, issuer, candidate); score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore >= s.threshold {
		return Result{Status: StatusFoundVerified, Card: best}, nil
	}

	// A candidate confirmed earlier but not yet reviewed reads back unchanged.
	// Rejected identities fall through; re-confirming one fails downstream.
	if existing, err := s.repo.FindAny(ctx, name, issuer); err == nil {
		if existing.Status == StatusPending {
			return pendingResult(existing), nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return Result{}, err
	}

	if s.extractor == nil {
		return Result{}, ErrNotFound
	}

	candidate, confidence, err := s.extractor.Extract(ctx, name, issuer, network)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		if s.logger != nil {
			s.logger.Warn("card extraction failed", "card_name", name, "issuer", issuer, "error", err)
		}
		return Result{}, fmt.Errorf("%w: no extractable candidate for %s / %s", ErrNotFound, name, issuer)
	}
	candidate.Confidence = confidence
	return pendingResult(candidate), nil
}

func pendingResult(candidate Entry) Result {
	res := Result{
		Status:     StatusNeedsConfirmation,
		Candidate:  candidate,
		Confidence: candidate.Confidence,
	}
	if candidate.Evidence != nil {
		res.ExtractedFrom = candidate.Evidence.URLs
	}
	return res
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
