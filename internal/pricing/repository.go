package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// Repository defines persistent storage for price rows and feed quotes.
type Repository interface {
	Latest(ctx context.Context) (Price, error)
	Insert(ctx context.Context, p Price) (Price, error)
	SaveQuote(ctx context.Context, symbol string, priceMYR decimal.Decimal) error
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// Quote is an external feed quote stored in the database.
type Quote struct {
	Symbol    string          `json:"symbol"`
	PriceMYR  decimal.Decimal `json:"price_myr"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL pricing repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const priceColumns = `source, price_myr_per_g, buy_myr_per_g, sell_myr_per_g,
	user_buy_myr_per_g, user_sell_myr_per_g, spread_myr_per_g, spread_bps,
	effective_date, last_updated, note, created_at`

func (r *PgRepository) Latest(ctx context.Context) (Price, error) {
	var p Price
	err := r.pool.QueryRow(ctx,
		`SELECT `+priceColumns+`
		 FROM prices
		 ORDER BY created_at DESC
		 LIMIT 1`).
		Scan(&p.Source, &p.PriceMYRPerG, &p.BuyMYRPerG, &p.SellMYRPerG,
			&p.UserBuyMYRPerG, &p.UserSellMYRPerG, &p.SpreadMYRPerG, &p.SpreadBps,
			&p.EffectiveDate, &p.LastUpdated, &p.Note, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Price{}, domain.ErrNotFound
		}
		return Price{}, fmt.Errorf("getting latest price: %w", err)
	}
	return p, nil
}

func (r *PgRepository) Insert(ctx context.Context, p Price) (Price, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO prices
		   (source, price_myr_per_g, buy_myr_per_g, sell_myr_per_g,
		    user_buy_myr_per_g, user_sell_myr_per_g, spread_myr_per_g, spread_bps,
		    effective_date, last_updated, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		p.Source, p.PriceMYRPerG, p.BuyMYRPerG, p.SellMYRPerG,
		p.UserBuyMYRPerG, p.UserSellMYRPerG, p.SpreadMYRPerG, p.SpreadBps,
		p.EffectiveDate, p.LastUpdated, p.Note).
		Scan(&p.CreatedAt)
	if err != nil {
		return Price{}, fmt.Errorf("inserting price: %w", err)
	}
	return p, nil
}

func (r *PgRepository) SaveQuote(ctx context.Context, symbol string, priceMYR decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO external_quotes (symbol, price_myr, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (symbol) DO UPDATE SET price_myr = $2, updated_at = NOW()`,
		symbol, priceMYR)
	if err != nil {
		return fmt.Errorf("saving quote for %s: %w", symbol, err)
	}
	return nil
}

func (r *PgRepository) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, price_myr, updated_at FROM external_quotes WHERE symbol = $1`,
		symbol).Scan(&q.Symbol, &q.PriceMYR, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, domain.ErrNotFound
		}
		return Quote{}, fmt.Errorf("getting quote for %s: %w", symbol, err)
	}
	return q, nil
}
