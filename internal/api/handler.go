// Package api exposes the reserve over HTTP. The surface is split between
// user endpoints (wallet resolved per request from the X-User-Wallet header,
// no session state) and admin endpoints behind a Bearer key.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/account"
	"github.com/oureum/reserve/internal/domain"
	"github.com/oureum/reserve/internal/engine"
	"github.com/oureum/reserve/internal/goldledger"
	"github.com/oureum/reserve/internal/pricing"
	"github.com/oureum/reserve/internal/reconcile"
	"github.com/oureum/reserve/internal/tokenops"
)

const walletHeader = "X-User-Wallet"

// Prices supplies and updates the quote sheet.
type Prices interface {
	Current(ctx context.Context) (pricing.Price, error)
	SetPrice(ctx context.Context, req pricing.SetPriceRequest) (pricing.Price, error)
	ReferenceQuote(ctx context.Context) (pricing.Quote, error)
}

// Accounts is the handler's view of the account service.
type Accounts interface {
	Register(ctx context.Context, wallet string, email *string) (account.Account, error)
	Get(ctx context.Context, wallet string) (account.Account, error)
	Balances(ctx context.Context, wallet string) (account.Balances, error)
	Credit(ctx context.Context, wallet string, amount decimal.Decimal) error
}

// Activity lists a wallet's recorded operations.
type Activity interface {
	ListByWallet(ctx context.Context, wallet string, limit, offset int) ([]tokenops.Op, error)
}

// GoldLedger registers and lists physical intake entries.
type GoldLedger interface {
	Register(ctx context.Context, req goldledger.RegisterRequest) (goldledger.Entry, error)
	List(ctx context.Context, limit int) ([]goldledger.Entry, error)
}

// Reconciler computes the supply snapshot.
type Reconciler interface {
	Snapshot(ctx context.Context) (reconcile.Snapshot, error)
}

// Trader runs buy and sell transactions.
type Trader interface {
	Buy(ctx context.Context, wallet string, grams decimal.Decimal) (engine.Result, error)
	Sell(ctx context.Context, wallet string, grams decimal.Decimal) (engine.Result, error)
}

// Handler provides the HTTP endpoints.
type Handler struct {
	prices   Prices
	accounts Accounts
	activity Activity
	ledger   GoldLedger
	recon    Reconciler
	trader   Trader
}

// NewHandler creates a new API handler.
func NewHandler(prices Prices, accounts Accounts, activity Activity, ledger GoldLedger, recon Reconciler, trader Trader) *Handler {
	return &Handler{
		prices:   prices,
		accounts: accounts,
		activity: activity,
		ledger:   ledger,
		recon:    recon,
		trader:   trader,
	}
}

// GetCurrentPrice handles GET /api/price/current.
func (h *Handler) GetCurrentPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.prices.Current(r.Context())
	if err != nil {
		slog.Error("failed to get current price", "error", err)
		writeError(w, http.StatusServiceUnavailable, "no current price")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": p})
}

// GetReferenceQuote handles GET /api/price/reference: the stored external
// gold quote, for comparing the admin price against the market.
func (h *Handler) GetReferenceQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.prices.ReferenceQuote(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no reference quote yet")
			return
		}
		slog.Error("failed to get reference quote", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": q})
}

// SetPrice handles POST /api/price (admin).
func (h *Handler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req pricing.SetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.prices.SetPrice(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to set price")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": p})
}

// RegisterUser handles POST /api/user/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.wallet(w, r)
	if !ok {
		return
	}

	var req struct {
		Email *string `json:"email"`
	}
	if r.Body != nil {
		// Body is optional on register.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	a, err := h.accounts.Register(r.Context(), wallet, req.Email)
	if err != nil {
		writeDomainError(w, err, "failed to register account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": a})
}

// GetMe handles GET /api/user/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.wallet(w, r)
	if !ok {
		return
	}
	a, err := h.accounts.Get(r.Context(), wallet)
	if err != nil {
		writeDomainError(w, err, "failed to get account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": a})
}

// GetBalances handles GET /api/user/balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.wallet(w, r)
	if !ok {
		return
	}
	b, err := h.accounts.Balances(r.Context(), wallet)
	if err != nil {
		writeDomainError(w, err, "failed to get balances")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": b})
}

// GetActivity handles GET /api/user/activity.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.wallet(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 20, 100)
	ops, err := h.activity.ListByWallet(r.Context(), wallet, limit, offset)
	if err != nil {
		slog.Error("failed to list activity", "wallet", domain.ShortWallet(wallet), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ops == nil {
		ops = []tokenops.Op{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": ops, "limit": limit, "offset": offset})
}

// Mint handles POST /api/user/mint.
func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.trader.Buy)
}

// Burn handles POST /api/user/burn.
func (h *Handler) Burn(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.trader.Sell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, run func(context.Context, string, decimal.Decimal) (engine.Result, error)) {
	wallet, ok := h.wallet(w, r)
	if !ok {
		return
	}

	var req struct {
		Grams any `json:"grams"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	grams, err := parseAmount(req.Grams)
	if err != nil {
		writeError(w, http.StatusBadRequest, "grams must be a number")
		return
	}

	res, err := run(r.Context(), wallet, grams)
	if err != nil {
		writeDomainError(w, err, "transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": res})
}

// CreditUser handles POST /api/user/credit (admin).
func (h *Handler) CreditUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet    string `json:"wallet_address"`
		AmountMYR any    `json:"amount_myr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	wallet, err := domain.NormalizeWallet(req.Wallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}
	amount, err := parseAmount(req.AmountMYR)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount_myr must be a number")
		return
	}

	if err := h.accounts.Credit(r.Context(), wallet, amount); err != nil {
		writeDomainError(w, err, "failed to credit account")
		return
	}
	b, err := h.accounts.Balances(r.Context(), wallet)
	if err != nil {
		writeDomainError(w, err, "failed to read balances")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": b})
}

// ListLedgerEntries handles GET /api/ledger/entries.
func (h *Handler) ListLedgerEntries(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 500
	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	entries, err := h.ledger.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list ledger entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []goldledger.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

// RegisterLedgerEntry handles POST /api/ledger/entries (admin).
func (h *Handler) RegisterLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var req goldledger.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, err := h.ledger.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to register ledger entry")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": entry})
}

// GetReconciliation handles GET /api/reconciliation.
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	s, err := h.recon.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrDataIntegrity) {
			slog.Error("reconciliation integrity failure", "error", err)
			writeError(w, http.StatusInternalServerError, "reconciliation failed integrity check")
			return
		}
		slog.Error("failed to compute reconciliation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s})
}

// wallet resolves and validates the caller's wallet from the request header.
func (h *Handler) wallet(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.Header.Get(walletHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing "+walletHeader+" header")
		return "", false
	}
	wallet, err := domain.NormalizeWallet(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return "", false
	}
	return wallet, true
}

func pagination(r *http.Request, def, max int) (limit, offset int) {
	limit = def
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, max)
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseAmount accepts a JSON number or a numeric string; clients have sent both.
func parseAmount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	}
	return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
}

func writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrExecutorFailure):
		writeError(w, http.StatusBadGateway, "chain execution failed")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream unavailable")
	default:
		slog.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
