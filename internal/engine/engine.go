package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/account"
	"github.com/oureum/reserve/internal/chain"
	"github.com/oureum/reserve/internal/domain"
	"github.com/oureum/reserve/internal/pricing"
	"github.com/oureum/reserve/internal/tokenops"
)

// Ledger is the engine's view of the account balance service.
type Ledger interface {
	Get(ctx context.Context, wallet string) (account.Account, error)
	Credit(ctx context.Context, wallet string, amount decimal.Decimal) error
	Debit(ctx context.Context, wallet string, amount decimal.Decimal) error
	CreditTokens(ctx context.Context, wallet string, grams decimal.Decimal) error
	DebitTokens(ctx context.Context, wallet string, grams decimal.Decimal) error
	AddSpent(ctx context.Context, wallet string, amount decimal.Decimal) error
}

// PriceSource supplies the current quote sheet.
type PriceSource interface {
	Current(ctx context.Context) (pricing.Price, error)
}

// OpRecorder records a finalized supply operation for the activity feed
// and reconciliation.
type OpRecorder interface {
	Record(ctx context.Context, op tokenops.Op) error
}

// Result is what the caller gets back from a finished transaction.
type Result struct {
	TxID      string          `json:"transaction_id"`
	TxRef     string          `json:"tx_hash"`
	Grams     decimal.Decimal `json:"grams"`
	AmountMYR decimal.Decimal `json:"amount_myr"`
	PricePerG decimal.Decimal `json:"price_myr_per_g"`
}

// Engine drives buy and sell transactions. The whole reserve→finalize span
// for one wallet runs under that wallet's mutex here, above the ledger's own
// per-mutation locking, so two concurrent transactions on one account can
// never double-spend. Different wallets proceed in parallel.
type Engine struct {
	accounts Ledger
	prices   PriceSource
	executor chain.Executor
	ops      OpRecorder
	repo     Repository
	locks    *account.KeyedMutex
}

// New creates a transaction engine.
func New(accounts Ledger, prices PriceSource, executor chain.Executor, ops OpRecorder, repo Repository) *Engine {
	return &Engine{
		accounts: accounts,
		prices:   prices,
		executor: executor,
		ops:      ops,
		repo:     repo,
		locks:    account.NewKeyedMutex(),
	}
}

// Buy purchases grams of tokens: debit fiat, mint on chain, credit tokens.
func (e *Engine) Buy(ctx context.Context, wallet string, grams decimal.Decimal) (Result, error) {
	return e.run(ctx, wallet, SideBuy, grams)
}

// Sell redeems grams of tokens: debit tokens, burn on chain, credit fiat.
func (e *Engine) Sell(ctx context.Context, wallet string, grams decimal.Decimal) (Result, error) {
	return e.run(ctx, wallet, SideSell, grams)
}

func (e *Engine) run(ctx context.Context, wallet string, side Side, grams decimal.Decimal) (Result, error) {
	w, err := domain.NormalizeWallet(wallet)
	if err != nil {
		return Result{}, err
	}
	if !grams.IsPositive() {
		return Result{}, fmt.Errorf("%w: grams must be positive, got %s", domain.ErrInvalidRequest, grams)
	}
	grams = grams.Round(4)
	if !grams.IsPositive() {
		return Result{}, fmt.Errorf("%w: grams too small to settle", domain.ErrInvalidRequest)
	}

	mu := e.locks.Get(w)
	mu.Lock()
	defer mu.Unlock()

	price, err := e.prices.Current(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: no current price: %v", domain.ErrUpstreamUnavailable, err)
	}
	unit := price.UserBuyMYRPerG
	if side == SideSell {
		unit = price.UserSellMYRPerG
	}
	if !unit.IsPositive() {
		return Result{}, fmt.Errorf("%w: price sheet has no usable %s price", domain.ErrUpstreamUnavailable, side)
	}
	amount := grams.Mul(unit).Round(2)

	acct, err := e.accounts.Get(ctx, w)
	if err != nil {
		return Result{}, err
	}
	if side == SideBuy && acct.RMBalance.LessThan(amount) {
		return Result{}, fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientBalance,
			domain.FormatMYR(amount), domain.FormatMYR(acct.RMBalance))
	}
	if side == SideSell && acct.TokenGrams.LessThan(grams) {
		return Result{}, fmt.Errorf("%w: need %s g, have %s g", domain.ErrInsufficientBalance,
			domain.FormatGrams(grams), domain.FormatGrams(acct.TokenGrams))
	}

	t := newTransaction(w, side, grams, unit, amount)
	if err := e.repo.Insert(ctx, t); err != nil {
		return Result{}, err
	}

	// Reserve: the debit is the reservation. It re-checks the balance under
	// the ledger's own lock and is reverted in full if execution fails.
	if err := e.reserve(ctx, w, side, grams, amount); err != nil {
		e.abort(ctx, &t, err.Error())
		return Result{}, err
	}

	// Funds are held from here on; a dropped client connection must not
	// strand them mid-flight.
	ctx = context.WithoutCancel(ctx)
	e.transition(ctx, &t, StateExecuting)

	kind := chain.Mint
	if side == SideSell {
		kind = chain.Burn
	}
	res, err := e.executor.Execute(ctx, kind, w, grams)
	if err != nil {
		if rerr := e.revert(ctx, w, side, grams, amount); rerr != nil {
			slog.Error("reverting reservation failed",
				"tx", t.ID, "wallet", domain.ShortWallet(w), "error", rerr)
		}
		e.abort(ctx, &t, err.Error())
		return Result{}, fmt.Errorf("%w: %v", domain.ErrExecutorFailure, err)
	}

	e.transition(ctx, &t, StateFinalizing)
	if err := e.finalize(ctx, w, side, grams, amount); err != nil {
		// The chain operation already happened; the ledger is now behind it.
		// Reconciliation will show the drift, this needs an operator.
		slog.Error("finalize after chain execution failed",
			"tx", t.ID, "tx_ref", res.TxRef, "wallet", domain.ShortWallet(w), "error", err)
		e.abort(ctx, &t, err.Error())
		return Result{}, fmt.Errorf("%w: finalize failed after %s: %v", domain.ErrDataIntegrity, res.TxRef, err)
	}

	opKind := tokenops.KindMint
	if side == SideSell {
		opKind = tokenops.KindBurn
	}
	txRef := res.TxRef
	if err := e.ops.Record(ctx, tokenops.Op{
		Wallet:    w,
		Type:      opKind,
		Grams:     grams,
		AmountMYR: amount,
		PricePerG: unit,
		TxHash:    &txRef,
	}); err != nil {
		slog.Error("recording token op", "tx", t.ID, "tx_ref", txRef, "error", err)
	}

	t.TxRef = &txRef
	e.transition(ctx, &t, StateSucceeded)

	slog.Info("transaction settled",
		"tx", t.ID, "side", side, "wallet", domain.ShortWallet(w),
		"grams", domain.FormatGrams(grams), "amount", domain.FormatMYR(amount))

	return Result{
		TxID:      t.ID.String(),
		TxRef:     txRef,
		Grams:     grams,
		AmountMYR: amount,
		PricePerG: unit,
	}, nil
}

func (e *Engine) reserve(ctx context.Context, wallet string, side Side, grams, amount decimal.Decimal) error {
	if side == SideBuy {
		return e.accounts.Debit(ctx, wallet, amount)
	}
	return e.accounts.DebitTokens(ctx, wallet, grams)
}

func (e *Engine) revert(ctx context.Context, wallet string, side Side, grams, amount decimal.Decimal) error {
	if side == SideBuy {
		return e.accounts.Credit(ctx, wallet, amount)
	}
	return e.accounts.CreditTokens(ctx, wallet, grams)
}

func (e *Engine) finalize(ctx context.Context, wallet string, side Side, grams, amount decimal.Decimal) error {
	if side == SideBuy {
		if err := e.accounts.CreditTokens(ctx, wallet, grams); err != nil {
			return err
		}
		return e.accounts.AddSpent(ctx, wallet, amount)
	}
	return e.accounts.Credit(ctx, wallet, amount)
}

func (e *Engine) transition(ctx context.Context, t *Transaction, next State) {
	if err := t.advance(next); err != nil {
		slog.Error("transaction state error", "tx", t.ID, "error", err)
		return
	}
	if err := e.repo.Update(ctx, *t); err != nil {
		slog.Error("persisting transaction state", "tx", t.ID, "state", next, "error", err)
	}
}

func (e *Engine) abort(ctx context.Context, t *Transaction, reason string) {
	if err := t.fail(reason); err != nil {
		slog.Error("transaction state error", "tx", t.ID, "error", err)
		return
	}
	if err := e.repo.Update(ctx, *t); err != nil {
		slog.Error("persisting failed transaction", "tx", t.ID, "error", err)
	}
}
