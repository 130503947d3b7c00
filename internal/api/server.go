package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. Admin routes
// are only mounted when an API key is set; without one they do not exist.
func NewServer(port string, h *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/price/current", h.GetCurrentPrice)
	mux.HandleFunc("GET /api/price/reference", h.GetReferenceQuote)
	mux.HandleFunc("POST /api/user/register", h.RegisterUser)
	mux.HandleFunc("GET /api/user/me", h.GetMe)
	mux.HandleFunc("GET /api/user/balances", h.GetBalances)
	mux.HandleFunc("GET /api/user/activity", h.GetActivity)
	mux.HandleFunc("POST /api/user/mint", h.Mint)
	mux.HandleFunc("POST /api/user/burn", h.Burn)
	mux.HandleFunc("GET /api/ledger/entries", h.ListLedgerEntries)
	mux.HandleFunc("GET /api/reconciliation", h.GetReconciliation)

	if adminAPIKey != "" {
		mux.Handle("POST /api/price", requireAuth(adminAPIKey, http.HandlerFunc(h.SetPrice)))
		mux.Handle("POST /api/ledger/entries", requireAuth(adminAPIKey, http.HandlerFunc(h.RegisterLedgerEntry)))
		mux.Handle("POST /api/user/credit", requireAuth(adminAPIKey, http.HandlerFunc(h.CreditUser)))
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
