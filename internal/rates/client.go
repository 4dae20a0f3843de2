// Package rates fetches the latest exchange rates from exchangerate-api.com.
// All rates are quoted as foreign units per HKD, the app's base currency.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ryokou-app/backend/internal/domain"
)

// DefaultBaseURL is the public exchangerate-api endpoint root.
const DefaultBaseURL = "https://api.exchangerate-api.com"

// Client fetches the latest rate table, caching results between calls.
// It implements service.RateSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
}

// NewClient constructs a rate client. An empty baseURL selects the public
// API; a nil cache gets an in-memory one.
func NewClient(baseURL string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
	}
}

// Latest returns the current rate table keyed by currency code. Cached
// tables are served without touching the network.
func (c *Client) Latest(ctx context.Context) (map[string]float64, error) {
	if rates, ok := c.cache.Get(ctx); ok {
		return rates, nil
	}

	url := fmt.Sprintf("%s/v4/latest/%s", c.baseURL, domain.BaseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("rates.Client.Latest: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates.Client.Latest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates.Client.Latest: unexpected status %s", resp.Status)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("rates.Client.Latest: decode: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates.Client.Latest: empty rate table")
	}

	c.cache.Set(ctx, payload.Rates)
	return payload.Rates, nil
}
