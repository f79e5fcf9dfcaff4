package wallet

import (
	"context"
	"sort"
	"sync"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Card // keyed by userID|catalogID
	catalog catalog.Repository
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode. It joins against the given catalog repository on reads.
func NewMemoryRepository(catalogRepo catalog.Repository) Repository {
	return &memoryRepository{storage: make(map[string]Card), catalog: catalogRepo}
}

func (r *memoryRepository) Add(_ context.Context, card Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := card.UserID + "|" + card.CatalogID
	if _, exists := r.storage[key]; exists {
		return nil
	}
	r.storage[key] = card
	return nil
}

func (r *memoryRepository) ListForUser(ctx context.Context, userID string) ([]Item, error) {
	r.mu.RLock()
	var cards []Card
	for _, card := range r.storage {
		if card.UserID == userID {
			cards = append(cards, card)
		}
	}
	r.mu.RUnlock()

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].ID < cards[j].ID
		}
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})

	items := make([]Item, 0, len(cards))
	for _, card := range cards {
		entry, err := r.catalog.Get(ctx, card.CatalogID)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Card: card, Entry: entry})
	}
	return items, nil
}
