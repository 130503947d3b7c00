package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/account"
	"github.com/oureum/reserve/internal/domain"
	"github.com/oureum/reserve/internal/engine"
	"github.com/oureum/reserve/internal/goldledger"
	"github.com/oureum/reserve/internal/pricing"
	"github.com/oureum/reserve/internal/reconcile"
	"github.com/oureum/reserve/internal/tokenops"
)

const testWallet = "0x1234567890abcdef1234567890abcdef12345678"

type stubPrices struct {
	current func() (pricing.Price, error)
}

func (s *stubPrices) Current(context.Context) (pricing.Price, error) {
	return s.current()
}

func (s *stubPrices) SetPrice(_ context.Context, req pricing.SetPriceRequest) (pricing.Price, error) {
	return pricing.Price{}, nil
}

func (s *stubPrices) ReferenceQuote(context.Context) (pricing.Quote, error) {
	return pricing.Quote{}, domain.ErrNotFound
}

type stubAccounts struct {
	balances func(wallet string) (account.Balances, error)
	credited decimal.Decimal
}

func (s *stubAccounts) Register(_ context.Context, wallet string, email *string) (account.Account, error) {
	return account.Account{Wallet: wallet, Email: email}, nil
}

func (s *stubAccounts) Get(_ context.Context, wallet string) (account.Account, error) {
	return account.Account{Wallet: wallet}, nil
}

func (s *stubAccounts) Balances(_ context.Context, wallet string) (account.Balances, error) {
	if s.balances != nil {
		return s.balances(wallet)
	}
	return account.Balances{}, nil
}

func (s *stubAccounts) Credit(_ context.Context, _ string, amount decimal.Decimal) error {
	s.credited = s.credited.Add(amount)
	return nil
}

type stubActivity struct {
	ops []tokenops.Op
}

func (s *stubActivity) ListByWallet(_ context.Context, _ string, limit, offset int) ([]tokenops.Op, error) {
	return s.ops, nil
}

type stubLedger struct{}

func (stubLedger) Register(_ context.Context, req goldledger.RegisterRequest) (goldledger.Entry, error) {
	return goldledger.Entry{}, nil
}

func (stubLedger) List(context.Context, int) ([]goldledger.Entry, error) {
	return nil, nil
}

type stubRecon struct {
	snapshot func() (reconcile.Snapshot, error)
}

func (s *stubRecon) Snapshot(context.Context) (reconcile.Snapshot, error) {
	return s.snapshot()
}

type stubTrader struct {
	buy  func(wallet string, grams decimal.Decimal) (engine.Result, error)
	sell func(wallet string, grams decimal.Decimal) (engine.Result, error)
}

func (s *stubTrader) Buy(_ context.Context, wallet string, grams decimal.Decimal) (engine.Result, error) {
	return s.buy(wallet, grams)
}

func (s *stubTrader) Sell(_ context.Context, wallet string, grams decimal.Decimal) (engine.Result, error) {
	return s.sell(wallet, grams)
}

func newTestHandler() *Handler {
	return NewHandler(
		&stubPrices{current: func() (pricing.Price, error) {
			return pricing.Price{PriceMYRPerG: decimal.RequireFromString("500")}, nil
		}},
		&stubAccounts{},
		&stubActivity{},
		stubLedger{},
		&stubRecon{snapshot: func() (reconcile.Snapshot, error) { return reconcile.Snapshot{}, nil }},
		&stubTrader{
			buy: func(_ string, grams decimal.Decimal) (engine.Result, error) {
				return engine.Result{Grams: grams, TxRef: "0xabc"}, nil
			},
			sell: func(_ string, grams decimal.Decimal) (engine.Result, error) {
				return engine.Result{Grams: grams, TxRef: "0xabc"}, nil
			},
		},
	)
}

func TestGetCurrentPrice(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/price/current", nil)
	w := httptest.NewRecorder()

	h.GetCurrentPrice(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Data pricing.Price `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Data.PriceMYRPerG.Equal(decimal.RequireFromString("500")) {
		t.Errorf("price = %s, want 500", body.Data.PriceMYRPerG)
	}
}

func TestWalletHeaderMissing(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/user/balances", nil)
	w := httptest.NewRecorder()

	h.GetBalances(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestWalletHeaderInvalid(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/user/balances", nil)
	req.Header.Set(walletHeader, "0xZZ")
	w := httptest.NewRecorder()

	h.GetBalances(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestWalletHeaderUppercaseNormalized(t *testing.T) {
	var seen string
	h := NewHandler(
		&stubPrices{},
		&stubAccounts{balances: func(wallet string) (account.Balances, error) {
			seen = wallet
			return account.Balances{}, nil
		}},
		&stubActivity{}, stubLedger{},
		&stubRecon{}, &stubTrader{},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/user/balances", nil)
	req.Header.Set(walletHeader, strings.ToUpper(testWallet[2:]))
	w := httptest.NewRecorder()

	h.GetBalances(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without 0x prefix", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/balances", nil)
	req.Header.Set(walletHeader, "0x"+strings.ToUpper(testWallet[2:]))
	w = httptest.NewRecorder()

	h.GetBalances(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if seen != testWallet {
		t.Errorf("wallet passed to service = %q, want lowercased %q", seen, testWallet)
	}
}

func TestMintSuccess(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/user/mint", strings.NewReader(`{"grams":2}`))
	req.Header.Set(walletHeader, testWallet)
	w := httptest.NewRecorder()

	h.Mint(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Data engine.Result `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Data.TxRef != "0xabc" {
		t.Errorf("tx_hash = %q, want 0xabc", body.Data.TxRef)
	}
}

func TestMintStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient", fmt.Errorf("wrap: %w", domain.ErrInsufficientBalance), http.StatusPaymentRequired},
		{"invalid", fmt.Errorf("wrap: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{"executor", fmt.Errorf("wrap: %w", domain.ErrExecutorFailure), http.StatusBadGateway},
		{"upstream", fmt.Errorf("wrap: %w", domain.ErrUpstreamUnavailable), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&stubPrices{}, &stubAccounts{}, &stubActivity{}, stubLedger{}, &stubRecon{},
				&stubTrader{buy: func(string, decimal.Decimal) (engine.Result, error) {
					return engine.Result{}, tc.err
				}})

			req := httptest.NewRequest(http.MethodPost, "/api/user/mint", strings.NewReader(`{"grams":"1"}`))
			req.Header.Set(walletHeader, testWallet)
			w := httptest.NewRecorder()

			h.Mint(w, req)

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}

func TestBurnBadBody(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/user/burn", strings.NewReader(`{`))
	req.Header.Set(walletHeader, testWallet)
	w := httptest.NewRecorder()

	h.Burn(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReconciliationIntegrityFailure(t *testing.T) {
	h := NewHandler(&stubPrices{}, &stubAccounts{}, &stubActivity{}, stubLedger{},
		&stubRecon{snapshot: func() (reconcile.Snapshot, error) {
			return reconcile.Snapshot{}, fmt.Errorf("negative supply: %w", domain.ErrDataIntegrity)
		}}, &stubTrader{})

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation", nil)
	w := httptest.NewRecorder()

	h.GetReconciliation(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestActivityAlwaysReturnsArray(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/user/activity", nil)
	req.Header.Set(walletHeader, testWallet)
	w := httptest.NewRecorder()

	h.GetActivity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", w.Body.String())
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	handler := requireAuth("secret-key", next)
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !called {
		t.Error("next handler was not called")
	}
}

func TestRequireAuthWrongToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	handler := requireAuth("secret-key", next)
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	handler := requireAuth("secret-key", next)
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Basic secret-key")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
