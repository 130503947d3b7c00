package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// Repository defines durable storage for accounts.
type Repository interface {
	Create(ctx context.Context, wallet string, email *string) (Account, error)
	Get(ctx context.Context, wallet string) (Account, error)
	UpdateBalances(ctx context.Context, wallet string, rm, grams, spent decimal.Decimal) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL account repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, wallet string, email *string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (wallet_address, email)
		 VALUES ($1, $2)
		 ON CONFLICT (wallet_address) DO UPDATE SET updated_at = NOW()
		 RETURNING id, wallet_address, email, rm_balance_myr, oumg_balance_g, rm_spent, created_at, updated_at`,
		wallet, email).
		Scan(&a.ID, &a.Wallet, &a.Email, &a.RMBalance, &a.TokenGrams, &a.RMSpent, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, fmt.Errorf("creating account %s: %w", domain.ShortWallet(wallet), err)
	}
	return a, nil
}

func (r *PgRepository) Get(ctx context.Context, wallet string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, wallet_address, email, rm_balance_myr, oumg_balance_g, rm_spent, created_at, updated_at
		 FROM accounts WHERE wallet_address = $1`, wallet).
		Scan(&a.ID, &a.Wallet, &a.Email, &a.RMBalance, &a.TokenGrams, &a.RMSpent, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, domain.ErrNotFound
		}
		return Account{}, fmt.Errorf("getting account %s: %w", domain.ShortWallet(wallet), err)
	}
	return a, nil
}

func (r *PgRepository) UpdateBalances(ctx context.Context, wallet string, rm, grams, spent decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET rm_balance_myr = $2, oumg_balance_g = $3, rm_spent = $4, updated_at = NOW()
		 WHERE wallet_address = $1`,
		wallet, rm, grams, spent)
	if err != nil {
		return fmt.Errorf("updating balances for %s: %w", domain.ShortWallet(wallet), err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
