package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

const uniqueViolationCode = "23505"

const entryColumns = `id, card_name, issuer, network, reward_rules, source, verification_status, evidence, confidence, created_at, updated_at`

// PostgresRepository stores catalog entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a catalog entry by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Entry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM card_catalog WHERE id = $1`, entryID)
	return scanEntry(row)
}

// FindVerified fetches the verified entry with the given normalized identity.
func (r *PostgresRepository) FindVerified(ctx context.Context, name, issuer string) (Entry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM card_catalog
        WHERE lower(card_name) = lower(trim($1)) AND lower(issuer) = lower(trim($2))
          AND verification_status = $3 LIMIT 1`, name, issuer, StatusVerified)
	return scanEntry(row)
}

// FindAny fetches the entry with the given normalized identity in any status.
func (r *PostgresRepository) FindAny(ctx context.Context, name, issuer string) (Entry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM card_catalog
        WHERE lower(card_name) = lower(trim($1)) AND lower(issuer) = lower(trim($2)) LIMIT 1`, name, issuer)
	return scanEntry(row)
}

// ListByStatus returns entries in the given status, most recently updated first.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status string) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM card_catalog
        WHERE verification_status = $1 ORDER BY updated_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// InsertPending persists a candidate entry awaiting review. The unique index
// on the normalized identity serializes racing confirms.
func (r *PostgresRepository) InsertPending(ctx context.Context, entry Entry) error {
	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("parse entry id: %w", err)
	}

	rules, err := json.Marshal(entry.Rules)
	if err != nil {
		return err
	}
	var evidence []byte
	if entry.Evidence != nil {
		if evidence, err = json.Marshal(entry.Evidence); err != nil {
			return err
		}
	}

	_, err = r.db.Exec(ctx, `INSERT INTO card_catalog
        (id, card_name, issuer, network, reward_rules, source, verification_status, evidence, confidence, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entryID, entry.CardName, entry.Issuer, nullIfEmpty(entry.Network), rules,
		entry.Source, entry.Status, evidence, entry.Confidence,
		entry.CreatedAt.UTC(), entry.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Resolve flips a pending entry to verified or rejected. The status filter in
// the UPDATE makes the flip first-writer-wins.
func (r *PostgresRepository) Resolve(ctx context.Context, id, status string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	cmd, err := r.db.Exec(ctx, `UPDATE card_catalog
        SET verification_status = $2, updated_at = $3
        WHERE id = $1 AND verification_status = $4`,
		entryID, status, time.Now().UTC(), StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyResolved
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		entry       Entry
		id          uuid.UUID
		network     *string
		rulesRaw    []byte
		evidenceRaw []byte
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := row.Scan(&id, &entry.CardName, &entry.Issuer, &network, &rulesRaw,
		&entry.Source, &entry.Status, &evidenceRaw, &entry.Confidence, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}

	entry.ID = id.String()
	if network != nil {
		entry.Network = *network
	}
	entry.Rules = make(rewards.Rules)
	if err := json.Unmarshal(rulesRaw, &entry.Rules); err != nil {
		return Entry{}, fmt.Errorf("decode reward rules for %s: %w", entry.ID, err)
	}
	if len(evidenceRaw) > 0 {
		var evidence Evidence
		if err := json.Unmarshal(evidenceRaw, &evidence); err != nil {
			return Entry{}, fmt.Errorf("decode evidence for %s: %w", entry.ID, err)
		}
		entry.Evidence = &evidence
	}
	entry.CreatedAt = createdAt.UTC()
	entry.UpdatedAt = updatedAt.UTC()
	return entry, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
