package account

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// Service is the balance ledger: the only path to balance change. Each
// mutation runs under the account's mutex, so no two mutations on one wallet
// interleave. Callers that need a whole multi-step sequence serialized (the
// transaction engine) hold their own per-wallet lock above this one.
type Service struct {
	repo  Repository
	locks *KeyedMutex
}

// NewService creates a new account balance service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, locks: NewKeyedMutex()}
}

// Register creates the account for a wallet, or returns the existing one.
func (s *Service) Register(ctx context.Context, wallet string, email *string) (Account, error) {
	w, err := domain.NormalizeWallet(wallet)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, w, email)
}

// Get returns the account for a wallet.
func (s *Service) Get(ctx context.Context, wallet string) (Account, error) {
	return s.repo.Get(ctx, wallet)
}

// Balances returns a consistent snapshot of both balances. A negative stored
// balance here means a write bypassed the ledger and is surfaced loudly.
func (s *Service) Balances(ctx context.Context, wallet string) (Balances, error) {
	a, err := s.repo.Get(ctx, wallet)
	if err != nil {
		return Balances{}, err
	}
	if a.RMBalance.IsNegative() || a.TokenGrams.IsNegative() {
		return Balances{}, fmt.Errorf("%w: account %s holds negative balance (rm=%s, g=%s)",
			domain.ErrDataIntegrity, domain.ShortWallet(wallet), a.RMBalance, a.TokenGrams)
	}
	return Balances{RMBalance: a.RMBalance, TokenGrams: a.TokenGrams}, nil
}

// Credit adds fiat credit to the account.
func (s *Service) Credit(ctx context.Context, wallet string, amount decimal.Decimal) error {
	return s.mutate(ctx, wallet, amount, func(a *Account, amt decimal.Decimal) error {
		a.RMBalance = a.RMBalance.Add(amt)
		return nil
	})
}

// Debit removes fiat credit; fails before any write if the balance would go negative.
func (s *Service) Debit(ctx context.Context, wallet string, amount decimal.Decimal) error {
	return s.mutate(ctx, wallet, amount, func(a *Account, amt decimal.Decimal) error {
		next := a.RMBalance.Sub(amt)
		if next.IsNegative() {
			return fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientBalance,
				domain.FormatMYR(amt), domain.FormatMYR(a.RMBalance))
		}
		a.RMBalance = next
		return nil
	})
}

// CreditTokens adds token grams to the account.
func (s *Service) CreditTokens(ctx context.Context, wallet string, grams decimal.Decimal) error {
	return s.mutate(ctx, wallet, grams, func(a *Account, amt decimal.Decimal) error {
		a.TokenGrams = a.TokenGrams.Add(amt)
		return nil
	})
}

// DebitTokens removes token grams; fails before any write if the balance would go negative.
func (s *Service) DebitTokens(ctx context.Context, wallet string, grams decimal.Decimal) error {
	return s.mutate(ctx, wallet, grams, func(a *Account, amt decimal.Decimal) error {
		next := a.TokenGrams.Sub(amt)
		if next.IsNegative() {
			return fmt.Errorf("%w: need %s g, have %s g", domain.ErrInsufficientBalance,
				domain.FormatGrams(amt), domain.FormatGrams(a.TokenGrams))
		}
		a.TokenGrams = next
		return nil
	})
}

// AddSpent bumps the running rm_spent total after a finalized purchase.
func (s *Service) AddSpent(ctx context.Context, wallet string, amount decimal.Decimal) error {
	return s.mutate(ctx, wallet, amount, func(a *Account, amt decimal.Decimal) error {
		a.RMSpent = a.RMSpent.Add(amt)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, wallet string, amount decimal.Decimal, apply func(*Account, decimal.Decimal) error) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidRequest, amount)
	}

	mu := s.locks.Get(wallet)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.repo.Get(ctx, wallet)
	if err != nil {
		return err
	}
	if err := apply(&a, amount); err != nil {
		return err
	}
	return s.repo.UpdateBalances(ctx, wallet, a.RMBalance, a.TokenGrams, a.RMSpent)
}
