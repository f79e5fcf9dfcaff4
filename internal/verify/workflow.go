// Package verify implements the catalog verification workflow: user-confirmed
// candidates enter the catalog as pending, reviewers resolve them, and only
// verified entries may be admitted into wallets.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/notification"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
	"github.com/cardsavvy/cardsavvy/internal/wallet"
)

var (
	// ErrNotVerified indicates an admit attempt against a non-verified entry.
	ErrNotVerified = errors.New("catalog entry is not verified")

	// ErrConflict indicates the card identity already exists with different
	// data, or lost a race to another confirm.
	ErrConflict = errors.New("conflicting catalog entry")
)

const defaultConfirmConfidence = 0.5

// Workflow coordinates catalog admission and review.
type Workflow struct {
	catalog  catalog.Repository
	wallet   wallet.Repository
	notifier notification.Notifier
	logger   *slog.Logger
}

// New builds a workflow. The notifier may be nil.
func New(catalogRepo catalog.Repository, walletRepo wallet.Repository, notifier notification.Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{catalog: catalogRepo, wallet: walletRepo, notifier: notifier, logger: logger}
}

// AdmitVerified adds a verified catalog entry to the user's wallet. Pending
// and rejected entries are refused.
func (w *Workflow) AdmitVerified(ctx context.Context, userID, catalogID, lastFour, nickname string) (wallet.Card, error) {
	entry, err := w.catalog.Get(ctx, catalogID)
	if err != nil {
		return wallet.Card{}, err
	}
	if entry.Status != catalog.StatusVerified {
		return wallet.Card{}, fmt.Errorf("%w: %s is %s", ErrNotVerified, catalogID, entry.Status)
	}
	return w.addToWallet(ctx, userID, entry.ID, lastFour, nickname)
}

// ConfirmInput is a user-approved candidate reward schedule.
type ConfirmInput struct {
	CardName   string
	Issuer     string
	Network    string
	Rules      rewards.Rules
	Evidence   *catalog.Evidence
	Confidence float64
	LastFour   string
	Nickname   string
}

// Confirm stores a confirmed candidate as a pending catalog entry and adds
// the card to the user's wallet. Confirming an identity that is already
// verified reuses the verified entry; confirming a rejected identity fails;
// re-confirming an identical pending candidate is idempotent.
func (w *Workflow) Confirm(ctx context.Context, userID string, input ConfirmInput) (catalog.Entry, wallet.Card, error) {
	existing, err := w.catalog.FindAny(ctx, input.CardName, input.Issuer)
	switch {
	case err == nil:
		entry, err := w.reconcile(existing, input)
		if err != nil {
			return catalog.Entry{}, wallet.Card{}, err
		}
		card, err := w.addToWallet(ctx, userID, entry.ID, input.LastFour, input.Nickname)
		if err != nil {
			return catalog.Entry{}, wallet.Card{}, err
		}
		return entry, card, nil
	case errors.Is(err, catalog.ErrNotFound):
		// fall through to insert
	default:
		return catalog.Entry{}, wallet.Card{}, err
	}

	confidence := input.Confidence
	if confidence <= 0 {
		confidence = defaultConfirmConfidence
	}
	now := time.Now().UTC()
	entry := catalog.Entry{
		ID:         uuid.NewString(),
		CardName:   input.CardName,
		Issuer:     input.Issuer,
		Network:    input.Network,
		Rules:      input.Rules,
		Source:     catalog.SourceWebExtracted,
		Status:     catalog.StatusPending,
		Evidence:   input.Evidence,
		Confidence: confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return catalog.Entry{}, wallet.Card{}, err
	}
	if err := w.catalog.InsertPending(ctx, entry); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return catalog.Entry{}, wallet.Card{}, fmt.Errorf("%w: %s / %s", ErrConflict, input.CardName, input.Issuer)
		}
		return catalog.Entry{}, wallet.Card{}, err
	}

	if w.notifier != nil {
		w.notifier.Notify(ctx, notification.Message{
			Kind:    notification.KindCardPendingReview,
			Subject: entry.ID,
			Body:    fmt.Sprintf("%s (%s) awaits review", entry.CardName, entry.Issuer),
		})
	}
	if w.logger != nil {
		w.logger.Info("card entered review queue", "catalog_id", entry.ID, "card_name", entry.CardName, "issuer", entry.Issuer)
	}

	card, err := w.addToWallet(ctx, userID, entry.ID, input.LastFour, input.Nickname)
	if err != nil {
		return catalog.Entry{}, wallet.Card{}, err
	}
	return entry, card, nil
}

// reconcile decides what a confirm means against an existing entry for the
// same card identity.
func (w *Workflow) reconcile(existing catalog.Entry, input ConfirmInput) (catalog.Entry, error) {
	switch existing.Status {
	case catalog.StatusVerified:
		return existing, nil
	case catalog.StatusRejected:
		return catalog.Entry{}, fmt.Errorf("%w: %s / %s was rejected", catalog.ErrAlreadyResolved, existing.CardName, existing.Issuer)
	default:
		if sameRules(existing.Rules, input.Rules) {
			return existing, nil
		}
		return catalog.Entry{}, fmt.Errorf("%w: pending entry %s has different rules", ErrConflict, existing.ID)
	}
}

// Resolve flips a pending entry to verified or rejected. Terminal entries
// cannot be resolved again.
func (w *Workflow) Resolve(ctx context.Context, id, status string) (catalog.Entry, error) {
	if status != catalog.StatusVerified && status != catalog.StatusRejected {
		return catalog.Entry{}, &rewards.InvalidInputError{Field: "status", Reason: "must be verified or rejected"}
	}
	if err := w.catalog.Resolve(ctx, id, status); err != nil {
		return catalog.Entry{}, err
	}
	if w.logger != nil {
		w.logger.Info("card resolved", "catalog_id", id, "status", status)
	}
	return w.catalog.Get(ctx, id)
}

func (w *Workflow) addToWallet(ctx context.Context, userID, catalogID, lastFour, nickname string) (wallet.Card, error) {
	card := wallet.Card{
		ID:        uuid.NewString(),
		UserID:    userID,
		CatalogID: catalogID,
		Nickname:  nickname,
		LastFour:  lastFour,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.wallet.Add(ctx, card); err != nil {
		return wallet.Card{}, err
	}
	return card, nil
}

func sameRules(a, b rewards.Rules) bool {
	if len(a) != len(b) {
		return false
	}
	for cat, rate := range a {
		if other, ok := b[cat]; !ok || other != rate {
			return false
		}
	}
	return true
}
