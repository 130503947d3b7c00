package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the current quote sheet: the base gold price plus the buy/sell
// prices derived from it, all in MYR per gram. User prices are what the
// transaction engine quotes; the admin pair is the treasury's own spread.
type Price struct {
	Source          string          `json:"source"`
	PriceMYRPerG    decimal.Decimal `json:"price_myr_per_g"`
	BuyMYRPerG      decimal.Decimal `json:"buy_myr_per_g"`
	SellMYRPerG     decimal.Decimal `json:"sell_myr_per_g"`
	UserBuyMYRPerG  decimal.Decimal `json:"user_buy_myr_per_g"`
	UserSellMYRPerG decimal.Decimal `json:"user_sell_myr_per_g"`
	SpreadMYRPerG   decimal.Decimal `json:"spread_myr_per_g"`
	SpreadBps       decimal.Decimal `json:"spread_bps"`
	EffectiveDate   *time.Time      `json:"effective_date"`
	LastUpdated     *time.Time      `json:"last_updated"`
	Note            *string         `json:"note"`
	CreatedAt       time.Time       `json:"created_at"`
}
