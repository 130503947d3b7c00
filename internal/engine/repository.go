package engine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists transaction rows at each state change.
type Repository interface {
	Insert(ctx context.Context, t Transaction) error
	Update(ctx context.Context, t Transaction) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL transaction repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Insert(ctx context.Context, t Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, wallet_address, side, grams, price_myr_per_g, amount_myr, state, tx_hash, fail_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Wallet, string(t.Side), t.Grams, t.PricePerG, t.AmountMYR,
		string(t.State), t.TxRef, t.FailReason, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

// Update writes the current state of a transaction. Rows already in a
// terminal state are never touched.
func (r *PgRepository) Update(ctx context.Context, t Transaction) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions
		 SET state = $2, tx_hash = $3, fail_reason = $4, updated_at = $5
		 WHERE id = $1 AND state NOT IN ('SUCCEEDED', 'FAILED')`,
		t.ID, string(t.State), t.TxRef, t.FailReason, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", t.ID, err)
	}
	return nil
}
