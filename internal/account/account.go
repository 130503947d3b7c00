package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a wallet's fiat credit and token gram balances. Balances are
// mutated only through the Service debit/credit operations.
type Account struct {
	ID         int64           `json:"id"`
	Wallet     string          `json:"wallet_address"`
	Email      *string         `json:"email"`
	RMBalance  decimal.Decimal `json:"rm_balance_myr"`
	TokenGrams decimal.Decimal `json:"oumg_balance_g"`
	RMSpent    decimal.Decimal `json:"rm_spent"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Balances is a consistent point-in-time read of both balances.
type Balances struct {
	RMBalance  decimal.Decimal `json:"rm_balance_myr"`
	TokenGrams decimal.Decimal `json:"oumg_balance_g"`
}
