package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	demoBaseURL = "https://api.coingecko.com/api/v3"
	proBaseURL  = "https://pro-api.coingecko.com/api/v3"

	demoKeyHeader = "x-cg-demo-api-key"
	proKeyHeader  = "x-cg-pro-api-key"

	maxResponseBytes = 1 << 20 // 1MB
)

// Client talks to the CoinGecko REST API. Responses are passed through as
// raw JSON; interpretation is left to the model.
type Client struct {
	baseURL   string
	apiKey    string
	keyHeader string
	http      *http.Client
}

type Config struct {
	APIKey  string
	Pro     bool
	BaseURL string // override, used in tests
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:   demoBaseURL,
		apiKey:    cfg.APIKey,
		keyHeader: demoKeyHeader,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	if cfg.Pro {
		c.baseURL = proBaseURL
		c.keyHeader = proKeyHeader
	}
	if cfg.BaseURL != "" {
		c.baseURL = cfg.BaseURL
	}
	return c
}

// Trending returns the coins trending on CoinGecko in the last 24 hours.
func (c *Client) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/search/trending", nil)
}

// Prices returns current prices for the given coin IDs in the given
// currencies.
func (c *Client) Prices(ctx context.Context, ids, currencies []string, marketCap, dayChange bool) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.Join(currencies, ","))
	q.Set("include_market_cap", strconv.FormatBool(marketCap))
	q.Set("include_24hr_change", strconv.FormatBool(dayChange))
	return c.get(ctx, "/simple/price", q)
}

// Search looks up coins, categories and markets matching the query.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", query)
	return c.get(ctx, "/search", q)
}

// History returns a coin's snapshot (price, market cap, volume) for a date
// given as dd-mm-yyyy.
func (c *Client) History(ctx context.Context, coinID, date string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("date", date)
	return c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/history", q)
}

// OHLC returns candlestick data for a coin over the trailing number of days.
func (c *Client) OHLC(ctx context.Context, coinID, currency string, days int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("days", strconv.Itoa(days))
	return c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/ohlc", q)
}

// Categories lists all coin category IDs and names.
func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/coins/categories/list", nil)
}

// CoinsByCategory returns market data for coins in a category.
func (c *Client) CoinsByCategory(ctx context.Context, category, currency string, perPage, page int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("vs_currency", currency)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	return c.get(ctx, "/coins/markets", q)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling coingecko: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("coingecko HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("coingecko returned invalid JSON for %s", path)
	}
	return json.RawMessage(body), nil
}
