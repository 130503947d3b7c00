package tokenops

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a supply operation. Wire values match the op_type column.
type Kind string

const (
	// KindMint is a buy: fiat credit exchanged for newly minted token grams.
	KindMint Kind = "BUY_MINT"
	// KindBurn is a sell: token grams retired in exchange for fiat credit.
	KindBurn Kind = "SELL_BURN"
)

// RawEvent is one untyped upstream record. Rows arrive in at least two shapes
// (audit-union and op-table) and may also be something else entirely, in which
// case they are not operations.
type RawEvent map[string]any

// Operation is the canonical form of a mint/burn event. Its JSON encoding is
// itself a valid op-table RawEvent, so normalization round-trips.
type Operation struct {
	Kind       Kind            `json:"op_type"`
	Grams      decimal.Decimal `json:"grams"`
	Operator   string          `json:"wallet_address"`
	TxRef      string          `json:"tx_hash,omitempty"`
	OccurredAt time.Time       `json:"created_at"`
}
