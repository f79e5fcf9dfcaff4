package rewards

import "errors"

var (
	// ErrEmptyWallet indicates there were no cards to compare. Callers should
	// prompt the user to add a card rather than treat this as a server fault.
	ErrEmptyWallet = errors.New("no cards in wallet")

	// ErrUnknownCategory indicates a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown spend category")
)

// Candidate pairs a wallet card with its reward schedule.
type Candidate struct {
	CardID string
	Name   string
	Bank   string
	Rules  Rules
}

// Selection is the reward-maximizing pick for one category.
type Selection struct {
	CardID string
	Name   string
	Bank   string
	Rate   float64
}

// Select returns the candidate with the strictly greatest rate for category.
// Ties keep the first candidate seen, so the wallet's iteration order decides.
func Select(category Category, candidates []Candidate) (Selection, error) {
	if !category.Valid() {
		return Selection{}, ErrUnknownCategory
	}
	if len(candidates) == 0 {
		return Selection{}, ErrEmptyWallet
	}

	best := candidates[0]
	bestRate := best.Rules.Rate(category)
	for _, c := range candidates[1:] {
		if rate := c.Rules.Rate(category); rate > bestRate {
			best, bestRate = c, rate
		}
	}

	return Selection{CardID: best.CardID, Name: best.Name, Bank: best.Bank, Rate: bestRate}, nil
}
