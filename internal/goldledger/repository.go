package goldledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistent storage for intake entries.
type Repository interface {
	Insert(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL gold ledger repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Insert(ctx context.Context, e Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO gold_ledger
		   (entry_date, intake_g, purity_bp, source, serial, batch, storage, custody, insurance, audit_ref, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		e.EntryDate, e.IntakeG, e.PurityBP, e.Source, e.Serial, e.Batch,
		e.Storage, e.Custody, e.Insurance, e.AuditRef, e.Note).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting gold ledger entry: %w", err)
	}
	return e, nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, entry_date, intake_g, purity_bp, source, serial, batch,
		        storage, custody, insurance, audit_ref, note, created_at
		 FROM gold_ledger
		 ORDER BY entry_date DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing gold ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EntryDate, &e.IntakeG, &e.PurityBP, &e.Source,
			&e.Serial, &e.Batch, &e.Storage, &e.Custody, &e.Insurance,
			&e.AuditRef, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gold ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
