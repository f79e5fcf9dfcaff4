package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

func testEntry(id, name, issuer, status string) Entry {
	rules := make(rewards.Rules)
	for _, cat := range rewards.Categories() {
		rules[cat] = 0.01
	}
	now := time.Now().UTC()
	return Entry{
		ID:        id,
		CardName:  name,
		Issuer:    issuer,
		Rules:     rules,
		Source:    SourceWebExtracted,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryRepositoryFindByIdentity(t *testing.T) {
	repo := NewMemoryRepository(Seed()...)
	ctx := context.Background()

	entry, err := repo.FindVerified(ctx, "  millennia credit card ", "HDFC BANK")
	require.NoError(t, err)
	assert.Equal(t, "Millennia Credit Card", entry.CardName)

	_, err = repo.FindVerified(ctx, "Nonexistent Card", "Nowhere Bank")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryInsertPendingRejectsDuplicateIdentity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertPending(ctx, testEntry("id-1", "Some Card", "Some Bank", StatusPending)))

	err := repo.InsertPending(ctx, testEntry("id-2", "SOME CARD", "some bank", StatusPending))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryRepositoryFindVerifiedSkipsPending(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertPending(ctx, testEntry("id-1", "Some Card", "Some Bank", StatusPending)))

	_, err := repo.FindVerified(ctx, "Some Card", "Some Bank")
	assert.ErrorIs(t, err, ErrNotFound)

	entry, err := repo.FindAny(ctx, "Some Card", "Some Bank")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, entry.Status)
}

func TestMemoryRepositoryResolveFlipsOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertPending(ctx, testEntry("id-1", "Some Card", "Some Bank", StatusPending)))

	require.NoError(t, repo.Resolve(ctx, "id-1", StatusVerified))

	entry, err := repo.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, entry.Status)

	err = repo.Resolve(ctx, "id-1", StatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	err = repo.Resolve(ctx, "missing", StatusVerified)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryListByStatus(t *testing.T) {
	repo := NewMemoryRepository(Seed()...)
	ctx := context.Background()

	require.NoError(t, repo.InsertPending(ctx, testEntry("id-1", "New Card", "New Bank", StatusPending)))

	verified, err := repo.ListByStatus(ctx, StatusVerified)
	require.NoError(t, err)
	assert.Len(t, verified, len(Seed()))

	pending, err := repo.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "New Card", pending[0].CardName)
}
