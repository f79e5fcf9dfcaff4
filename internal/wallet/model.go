package wallet

import (
	"time"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
)

// Card binds a user to one catalog entry. It carries no reward data of its
// own; rates always come from the catalog side of the join.
type Card struct {
	ID        string
	UserID    string
	CatalogID string
	Nickname  string
	LastFour  string
	CreatedAt time.Time
}

// Item is a wallet card joined with its catalog entry, the shape the
// recommendation engine consumes.
type Item struct {
	Card  Card
	Entry catalog.Entry
}
