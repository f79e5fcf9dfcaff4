package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Entry
	byKey   map[string]string
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode, optionally preloaded with entries.
func NewMemoryRepository(entries ...Entry) Repository {
	r := &memoryRepository{
		storage: make(map[string]Entry, len(entries)),
		byKey:   make(map[string]string, len(entries)),
	}
	for _, entry := range entries {
		r.storage[entry.ID] = entry
		r.byKey[NormalizeKey(entry.CardName, entry.Issuer)] = entry.ID
	}
	return r
}

func (r *memoryRepository) Get(_ context.Context, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.storage[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (r *memoryRepository) FindVerified(ctx context.Context, name, issuer string) (Entry, error) {
	entry, err := r.FindAny(ctx, name, issuer)
	if err != nil {
		return Entry{}, err
	}
	if entry.Status != StatusVerified {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (r *memoryRepository) FindAny(_ context.Context, name, issuer string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[NormalizeKey(name, issuer)]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return r.storage[id], nil
}

func (r *memoryRepository) ListByStatus(_ context.Context, status string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []Entry
	for _, entry := range r.storage {
		if entry.Status == status {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

func (r *memoryRepository) InsertPending(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := NormalizeKey(entry.CardName, entry.Issuer)
	if _, exists := r.byKey[key]; exists {
		return ErrDuplicate
	}
	if _, exists := r.storage[entry.ID]; exists {
		return ErrDuplicate
	}
	r.storage[entry.ID] = entry
	r.byKey[key] = entry.ID
	return nil
}

func (r *memoryRepository) Resolve(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	if entry.Terminal() {
		return ErrAlreadyResolved
	}
	entry.Status = status
	entry.UpdatedAt = time.Now().UTC()
	r.storage[id] = entry
	return nil
}
