package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GoldSymbol is the feed symbol for one gram of gold.
const GoldSymbol = "XAU"

// feedAssetID is the upstream identifier for gold on the quote endpoint.
const feedAssetID = "gold"

// gramsPerTroyOunce converts the feed's per-ounce quote to per-gram.
const gramsPerTroyOunce = "31.1034768"

// FeedClient fetches the external gold quote, with retry on 429.
type FeedClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewFeedClient creates a new gold feed client.
func NewFeedClient(baseURL string, maxRetries int, baseDelay time.Duration) *FeedClient {
	return &FeedClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// FetchGoldPriceMYR fetches the current gold price in MYR per troy ounce.
func (c *FeedClient) FetchGoldPriceMYR(ctx context.Context) (float64, error) {
	path := fmt.Sprintf("/simple/price?ids=%s&vs_currencies=myr", url.QueryEscape(feedAssetID))
	body, err := c.get(ctx, path)
	if err != nil {
		return 0, err
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("parsing feed response: %w", err)
	}

	price, ok := parsed[feedAssetID]["myr"]
	if !ok {
		return 0, fmt.Errorf("feed response missing %s/myr quote", feedAssetID)
	}
	return price, nil
}

func (c *FeedClient) get(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

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
