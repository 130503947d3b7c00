// Package chain talks to the token gateway that performs the actual on-chain
// mint and burn. The gateway is opaque to this service: it either returns a
// transaction reference or it fails, and the engine treats any failure the same.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// OpKind selects the gateway endpoint.
type OpKind string

const (
	Mint OpKind = "mint"
	Burn OpKind = "burn"
)

// Result is the gateway's confirmation of an executed operation.
type Result struct {
	TxRef          string          `json:"tx_hash"`
	ConfirmedGrams decimal.Decimal `json:"grams"`
}

// Executor is the engine's view of the gateway.
type Executor interface {
	Execute(ctx context.Context, kind OpKind, wallet string, grams decimal.Decimal) (Result, error)
}

// Client is an HTTP client for the token gateway with retry on 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new gateway client.
func NewClient(baseURL string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

type executeRequest struct {
	Wallet string          `json:"wallet_address"`
	Grams  decimal.Decimal `json:"grams"`
}

// Execute performs a mint or burn for the wallet and returns the gateway's
// transaction reference.
func (c *Client) Execute(ctx context.Context, kind OpKind, wallet string, grams decimal.Decimal) (Result, error) {
	payload, err := json.Marshal(executeRequest{Wallet: wallet, Grams: grams})
	if err != nil {
		return Result{}, fmt.Errorf("encoding request: %w", err)
	}

	body, err := c.post(ctx, "/"+string(kind), payload)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return Result{}, fmt.Errorf("parsing gateway response: %w", err)
	}
	if res.TxRef == "" {
		return Result{}, fmt.Errorf("gateway returned no transaction reference")
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	u := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", u, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, u, string(body))
	}

	return nil, lastErr
}
