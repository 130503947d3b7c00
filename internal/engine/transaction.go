// Package engine runs buy (mint) and sell (burn) transactions as a small
// state machine. Money moves only through the account ledger, the chain
// gateway is the only external side effect, and every state change is
// persisted so an operator can see where a transaction stopped.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// Side says which direction a transaction moves value.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// State is a transaction lifecycle stage. SUCCEEDED and FAILED are terminal.
type State string

const (
	StateReserving  State = "RESERVING"
	StateExecuting  State = "EXECUTING"
	StateFinalizing State = "FINALIZING"
	StateSucceeded  State = "SUCCEEDED"
	StateFailed     State = "FAILED"
)

// Transaction is one buy or sell run, one row in the transactions table.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	Wallet     string          `json:"wallet_address"`
	Side       Side            `json:"side"`
	Grams      decimal.Decimal `json:"grams"`
	PricePerG  decimal.Decimal `json:"price_myr_per_g"`
	AmountMYR  decimal.Decimal `json:"amount_myr"`
	State      State           `json:"state"`
	TxRef      *string         `json:"tx_hash"`
	FailReason *string         `json:"fail_reason"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func newTransaction(wallet string, side Side, grams, pricePerG, amount decimal.Decimal) Transaction {
	now := time.Now().UTC()
	return Transaction{
		ID:        uuid.New(),
		Wallet:    wallet,
		Side:      side,
		Grams:     grams,
		PricePerG: pricePerG,
		AmountMYR: amount,
		State:     StateReserving,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the transaction has reached a final state.
func (t *Transaction) Terminal() bool {
	return t.State == StateSucceeded || t.State == StateFailed
}

// advance moves the transaction to the next state. A terminal transaction
// never changes again; an attempt to do so is a logic error surfaced loudly.
func (t *Transaction) advance(next State) error {
	if t.Terminal() {
		return fmt.Errorf("%w: transaction %s is %s, cannot move to %s",
			domain.ErrDataIntegrity, t.ID, t.State, next)
	}
	t.State = next
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *Transaction) fail(reason string) error {
	if err := t.advance(StateFailed); err != nil {
		return err
	}
	t.FailReason = &reason
	return nil
}
