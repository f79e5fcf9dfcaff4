package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

// Source records how a catalog entry came to exist.
const (
	SourceManualVerified = "manual_verified"
	SourceWebExtracted   = "web_extracted"
)

// Verification states for a catalog entry. A pending entry flips to verified
// or rejected exactly once; both outcomes are terminal.
const (
	StatusVerified = "verified"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Evidence points at the sources a web-extracted reward schedule was built
// from. URL order is preserved.
type Evidence struct {
	URLs  []string `json:"urls"`
	Notes string   `json:"notes,omitempty"`
}

// Entry is one known card product in the catalog. Entries are never mutated in
// place; the only permitted change is the single pending-to-terminal status
// flip performed by Repository.Resolve.
type Entry struct {
	ID       string
	CardName string
	Issuer   string
	Network  string
	Rules    rewards.Rules
	Source   string
	Status   string
	Evidence *Evidence

	// Confidence is the advisory extraction confidence. It is meaningful while
	// the entry is pending and surfaced back to lookup callers unchanged.
	Confidence float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces structural invariants before an entry is persisted.
// Field-level problems come back as *rewards.InvalidInputError so the HTTP
// boundary can tell a bad confirm request from a server fault.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.CardName) == "" {
		return &rewards.InvalidInputError{Field: "card_name", Reason: "must not be blank"}
	}
	if strings.TrimSpace(e.Issuer) == "" {
		return &rewards.InvalidInputError{Field: "issuer", Reason: "must not be blank"}
	}
	if err := e.Rules.Validate(); err != nil {
		return &rewards.InvalidInputError{Field: "reward_rules", Reason: err.Error()}
	}
	switch e.Status {
	case StatusVerified, StatusPending, StatusRejected:
	default:
		return fmt.Errorf("unknown verification status %q", e.Status)
	}
	if e.Source == SourceManualVerified && e.Status != StatusVerified {
		return fmt.Errorf("manually verified entries must have status %s", StatusVerified)
	}
	return nil
}

// Terminal reports whether the entry has left the pending state.
func (e Entry) Terminal() bool {
	return e.Status != StatusPending
}

// NormalizeKey builds the case-insensitive identity used for matching and
// uniqueness: trimmed, lower-cased name and issuer.
func NormalizeKey(name, issuer string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(issuer))
}
