package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// Service supplies the current quote sheet and manages price updates.
type Service struct {
	repo  Repository
	feed  *FeedClient // optional
	cache *priceCache
}

// NewService creates a pricing service. The feed client may be nil; the
// feed worker then has nothing to refresh and prices are admin-set only.
func NewService(repo Repository, feed *FeedClient, cacheTTL time.Duration) *Service {
	return &Service{
		repo:  repo,
		feed:  feed,
		cache: newPriceCache(cacheTTL),
	}
}

// Current returns the latest price row, served from a short TTL cache.
func (s *Service) Current(ctx context.Context) (Price, error) {
	if p, ok := s.cache.get(); ok {
		return p, nil
	}

	p, err := s.repo.Latest(ctx)
	if err != nil {
		return Price{}, err
	}

	s.cache.set(p)
	return p, nil
}

// SetPriceRequest carries an admin price update. Spreads are in MYR per gram
// on each side of the base price.
type SetPriceRequest struct {
	PriceMYRPerG     string `json:"price_myr_per_g" validate:"required"`
	UserSpreadMYR    string `json:"user_spread_myr_per_g"`
	Source           string `json:"source"`
	Note             string `json:"note"`
	EffectiveDateStr string `json:"effective_date"`
}

// SetPrice inserts a new price row derived from the base price and spread,
// then invalidates the cache so the next read sees it.
func (s *Service) SetPrice(ctx context.Context, req SetPriceRequest) (Price, error) {
	base, err := decimal.NewFromString(req.PriceMYRPerG)
	if err != nil || !base.IsPositive() {
		return Price{}, fmt.Errorf("%w: price_myr_per_g must be positive", domain.ErrInvalidRequest)
	}

	spread := decimal.Zero
	if req.UserSpreadMYR != "" {
		spread, err = decimal.NewFromString(req.UserSpreadMYR)
		if err != nil || spread.IsNegative() {
			return Price{}, fmt.Errorf("%w: user_spread_myr_per_g must be non-negative", domain.ErrInvalidRequest)
		}
	}

	source := req.Source
	if source == "" {
		source = "admin"
	}

	var effective *time.Time
	if req.EffectiveDateStr != "" {
		t, err := time.Parse("2006-01-02", req.EffectiveDateStr)
		if err != nil {
			return Price{}, fmt.Errorf("%w: invalid effective_date", domain.ErrInvalidRequest)
		}
		effective = &t
	}

	now := time.Now().UTC()
	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	p := Price{
		Source:          source,
		PriceMYRPerG:    base,
		BuyMYRPerG:      base,
		SellMYRPerG:     base,
		UserBuyMYRPerG:  base.Add(spread),
		UserSellMYRPerG: base.Sub(spread),
		SpreadMYRPerG:   spread,
		SpreadBps:       spreadBps(base, spread),
		EffectiveDate:   effective,
		LastUpdated:     &now,
		Note:            note,
	}

	if p.UserSellMYRPerG.IsNegative() {
		return Price{}, fmt.Errorf("%w: spread exceeds base price", domain.ErrInvalidRequest)
	}

	inserted, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Price{}, err
	}

	s.cache.invalidate()
	return inserted, nil
}

// FetchAndStoreQuote pulls the external gold quote and stores it per gram.
// Implements the feed worker's fetcher interface.
func (s *Service) FetchAndStoreQuote(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}

	perOunce, err := s.feed.FetchGoldPriceMYR(ctx)
	if err != nil {
		return fmt.Errorf("fetching gold quote: %w", err)
	}

	perGram := decimal.NewFromFloat(perOunce).Div(decimal.RequireFromString(gramsPerTroyOunce))
	if err := s.repo.SaveQuote(ctx, GoldSymbol, perGram); err != nil {
		return fmt.Errorf("storing gold quote: %w", err)
	}
	return nil
}

// ReferenceQuote returns the stored external gold quote, if any.
func (s *Service) ReferenceQuote(ctx context.Context) (Quote, error) {
	return s.repo.GetQuote(ctx, GoldSymbol)
}

func spreadBps(base, spread decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return spread.Div(base).Mul(decimal.NewFromInt(10000)).Round(0)
}
