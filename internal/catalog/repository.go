package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no catalog entry matched.
	ErrNotFound = errors.New("catalog entry not found")

	// ErrDuplicate indicates an entry with the same normalized card identity
	// already exists. Concurrent confirms surface this instead of double-writing.
	ErrDuplicate = errors.New("catalog entry already exists")

	// ErrAlreadyResolved indicates a resolve attempt on a terminal entry.
	ErrAlreadyResolved = errors.New("catalog entry already resolved")
)

// Repository persists catalog entries. Name/issuer matching is exact on the
// normalized identity; fuzzy matching lives in LookupService, not here.
type Repository interface {
	Get(ctx context.Context, id string) (Entry, error)
	FindVerified(ctx context.Context, name, issuer string) (Entry, error)
	FindAny(ctx context.Context, name, issuer string) (Entry, error)
	ListByStatus(ctx context.Context, status string) ([]Entry, error)
	InsertPending(ctx context.Context, entry Entry) error
	Resolve(ctx context.Context, id, status string) error
}
