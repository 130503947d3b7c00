package tokenops

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Op is a recorded supply operation, one row in token_ops. Rows are append-only:
// the engine writes one at finalize and nothing ever updates them.
type Op struct {
	ID        int64           `json:"id"`
	Wallet    string          `json:"wallet_address"`
	Type      Kind            `json:"op_type"`
	Grams     decimal.Decimal `json:"grams"`
	AmountMYR decimal.Decimal `json:"amount_myr"`
	PricePerG decimal.Decimal `json:"price_myr_per_g"`
	TxHash    *string         `json:"tx_hash"`
	Note      *string         `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository defines persistent storage for token operations. It doubles as
// the best-effort event source for reconciliation via ListRaw.
type Repository interface {
	Record(ctx context.Context, op Op) error
	ListByWallet(ctx context.Context, wallet string, limit, offset int) ([]Op, error)
	ListRecent(ctx context.Context, limit int) ([]Op, error)
	ListRaw(ctx context.Context, limit, offset int) ([]RawEvent, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL token-ops repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Record(ctx context.Context, op Op) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO token_ops (wallet_address, op_type, grams, amount_myr, price_myr_per_g, tx_hash, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		op.Wallet, string(op.Type), op.Grams, op.AmountMYR, op.PricePerG, op.TxHash, op.Note)
	if err != nil {
		return fmt.Errorf("recording token op: %w", err)
	}
	return nil
}

func (r *PgRepository) ListByWallet(ctx context.Context, wallet string, limit, offset int) ([]Op, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, wallet_address, op_type, grams, amount_myr, price_myr_per_g, tx_hash, note, created_at
		 FROM token_ops
		 WHERE wallet_address = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, wallet, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing token ops for %s: %w", wallet, err)
	}
	defer rows.Close()

	var ops []Op
	for rows.Next() {
		var o Op
		var opType string
		if err := rows.Scan(&o.ID, &o.Wallet, &opType, &o.Grams, &o.AmountMYR,
			&o.PricePerG, &o.TxHash, &o.Note, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning token op: %w", err)
		}
		o.Type = Kind(opType)
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// ListRecent returns the newest operations across all wallets.
func (r *PgRepository) ListRecent(ctx context.Context, limit int) ([]Op, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, wallet_address, op_type, grams, amount_myr, price_myr_per_g, tx_hash, note, created_at
		 FROM token_ops
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent token ops: %w", err)
	}
	defer rows.Close()

	var ops []Op
	for rows.Next() {
		var o Op
		var opType string
		if err := rows.Scan(&o.ID, &o.Wallet, &opType, &o.Grams, &o.AmountMYR,
			&o.PricePerG, &o.TxHash, &o.Note, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning token op: %w", err)
		}
		o.Type = Kind(opType)
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// ListRaw returns recent operations as untyped op-table rows, newest first.
func (r *PgRepository) ListRaw(ctx context.Context, limit, offset int) ([]RawEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx,
		`SELECT wallet_address, op_type, grams, tx_hash, created_at
		 FROM token_ops
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing raw token ops: %w", err)
	}
	defer rows.Close()

	var events []RawEvent
	for rows.Next() {
		var (
			wallet, opType string
			grams          decimal.Decimal
			txHash         *string
			createdAt      time.Time
		)
		if err := rows.Scan(&wallet, &opType, &grams, &txHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning raw token op: %w", err)
		}
		ev := RawEvent{
			"wallet_address": wallet,
			"op_type":        opType,
			"grams":          grams,
			"created_at":     createdAt,
		}
		if txHash != nil {
			ev["tx_hash"] = *txHash
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
