package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lookup outcomes beyond the wire statuses.
const (
	LookupOutcomeNotFound  = "not_found"
	LookupOutcomeConfirmed = "confirmed"
)

// LookupRecord is one row of lookup provenance: who asked for which card and
// what came of it. CatalogID is empty when nothing was resolved.
type LookupRecord struct {
	ID        string
	UserID    string
	CardName  string
	Issuer    string
	Outcome   string
	CatalogID string
	CreatedAt time.Time
}

// AuditLog persists lookup provenance. Recording is best-effort; callers must
// not fail a request over a write error.
type AuditLog interface {
	RecordLookup(ctx context.Context, rec LookupRecord) error
}

// PostgresAuditLog writes lookup records to the lookup_audit table.
type PostgresAuditLog struct {
	db *pgxpool.Pool
}

// NewPostgresAuditLog builds an audit log backed by PostgreSQL.
func NewPostgresAuditLog(db *pgxpool.Pool) *PostgresAuditLog {
	return &PostgresAuditLog{db: db}
}

// RecordLookup implements AuditLog.
func (a *PostgresAuditLog) RecordLookup(ctx context.Context, rec LookupRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var catalogID *uuid.UUID
	if rec.CatalogID != "" {
		if parsed, err := uuid.Parse(rec.CatalogID); err == nil {
			catalogID = &parsed
		}
	}

	_, err := a.db.Exec(ctx, `INSERT INTO lookup_audit
        (id, user_id, card_name, issuer, outcome, catalog_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.CardName, rec.Issuer, rec.Outcome,
		catalogID, rec.CreatedAt.UTC())
	return err
}

// MemoryAuditLog keeps lookup records in memory for development and tests.
type MemoryAuditLog struct {
	mu      sync.Mutex
	records []LookupRecord
}

// NewMemoryAuditLog builds an empty in-memory audit log.
func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

// RecordLookup implements AuditLog.
func (a *MemoryAuditLog) RecordLookup(_ context.Context, rec LookupRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	a.records = append(a.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (a *MemoryAuditLog) Records() []LookupRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]LookupRecord, len(a.records))
	copy(out, a.records)
	return out
}
