package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

// Repository persists wallet bindings.
type Repository interface {
	// Add stores a binding. Adding the same (user, catalog entry) pair again
	// is a no-op so racing admits cannot double-write.
	Add(ctx context.Context, card Card) error
	// ListForUser returns the user's cards joined with their catalog entries.
	ListForUser(ctx context.Context, userID string) ([]Item, error)
}

// PostgresRepository stores wallet bindings in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts a wallet binding, ignoring duplicates of the same pair.
func (r *PostgresRepository) Add(ctx context.Context, card Card) error {
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return fmt.Errorf("parse wallet card id: %w", err)
	}
	catalogID, err := uuid.Parse(card.CatalogID)
	if err != nil {
		return fmt.Errorf("parse catalog id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO user_cards (id, user_id, card_catalog_id, nickname, last_four, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, card_catalog_id) DO NOTHING`,
		cardID, card.UserID, catalogID, nullIfEmpty(card.Nickname), nullIfEmpty(card.LastFour), card.CreatedAt.UTC())
	return err
}

// ListForUser fetches the user's bindings joined with catalog entries, newest
// binding first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT u.id, u.user_id, u.card_catalog_id, u.nickname, u.last_four, u.created_at,
            c.card_name, c.issuer, c.network, c.reward_rules, c.source, c.verification_status, c.evidence, c.confidence
        FROM user_cards u
        INNER JOIN card_catalog c ON c.id = u.card_catalog_id
        WHERE u.user_id = $1
        ORDER BY u.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item        Item
			cardID      uuid.UUID
			catalogID   uuid.UUID
			nickname    *string
			lastFour    *string
			network     *string
			rulesRaw    []byte
			evidenceRaw []byte
			createdAt   time.Time
		)
		err := rows.Scan(&cardID, &item.Card.UserID, &catalogID, &nickname, &lastFour, &createdAt,
			&item.Entry.CardName, &item.Entry.Issuer, &network, &rulesRaw,
			&item.Entry.Source, &item.Entry.Status, &evidenceRaw, &item.Entry.Confidence)
		if err != nil {
			return nil, err
		}
		item.Card.ID = cardID.String()
		item.Card.CatalogID = catalogID.String()
		item.Entry.ID = catalogID.String()
		if nickname != nil {
			item.Card.Nickname = *nickname
		}
		if lastFour != nil {
			item.Card.LastFour = *lastFour
		}
		if network != nil {
			item.Entry.Network = *network
		}
		item.Card.CreatedAt = createdAt.UTC()
		item.Entry.Rules = make(rewards.Rules)
		if err := json.Unmarshal(rulesRaw, &item.Entry.Rules); err != nil {
			return nil, fmt.Errorf("decode reward rules for %s: %w", item.Entry.ID, err)
		}
		if len(evidenceRaw) > 0 {
			var evidence catalog.Evidence
			if err := json.Unmarshal(evidenceRaw, &evidence); err != nil {
				return nil, fmt.Errorf("decode evidence for %s: %w", item.Entry.ID, err)
			}
			item.Entry.Evidence = &evidence
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
