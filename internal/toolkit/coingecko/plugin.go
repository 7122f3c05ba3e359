package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gekko/internal/toolkit"
)

// Plugin exposes CoinGecko market data as toolkit tools. The plugin only
// needs an API key; everything else is per-call input.
type Plugin struct {
	client *Client
}

func NewPlugin(cfg Config) *Plugin {
	return &Plugin{client: NewClient(cfg)}
}

func (p *Plugin) Name() string { return "coingecko" }

func (p *Plugin) Tools(ctx context.Context) ([]toolkit.Tool, error) {
	return []toolkit.Tool{
		&trendingTool{client: p.client},
		&pricesTool{client: p.client},
		&searchTool{client: p.client},
		&historyTool{client: p.client},
		&ohlcTool{client: p.client},
		&categoriesTool{client: p.client},
		&coinsByCategoryTool{client: p.client},
	}, nil
}

type trendingTool struct{ client *Client }

func (t *trendingTool) Name() string { return "coingecko.get_trending_coins" }
func (t *trendingTool) Description() string {
	return "Get the list of coins trending on CoinGecko in the last 24 hours"
}

func (t *trendingTool) InputSchema() any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func (t *trendingTool) Execute(ctx context.Context, input string) (any, error) {
	slog.Debug("coingecko: fetching trending coins")
	return t.client.Trending(ctx)
}

type pricesTool struct{ client *Client }

func (t *pricesTool) Name() string { return "coingecko.get_coin_prices" }
func (t *pricesTool) Description() string {
	return "Get current prices for one or more coins in one or more currencies"
}

func (t *pricesTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coin_ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "CoinGecko coin IDs, e.g. bitcoin, ethereum",
			},
			"vs_currencies": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Quote currencies, e.g. usd, eur",
			},
			"include_market_cap": map[string]any{
				"type":        "boolean",
				"description": "Include market cap in the result",
			},
			"include_24hr_change": map[string]any{
				"type":        "boolean",
				"description": "Include 24h price change in the result",
			},
		},
		"required":             []string{"coin_ids", "vs_currencies", "include_market_cap", "include_24hr_change"},
		"additionalProperties": false,
	}
}

func (t *pricesTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		CoinIDs        []string `json:"coin_ids"`
		VsCurrencies   []string `json:"vs_currencies"`
		IncludeCap     bool     `json:"include_market_cap"`
		IncludeDayMove bool     `json:"include_24hr_change"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing prices input: %w", err)
	}
	if len(args.CoinIDs) == 0 {
		return nil, fmt.Errorf("coin_ids is required")
	}
	if len(args.VsCurrencies) == 0 {
		args.VsCurrencies = []string{"usd"}
	}

	slog.Debug("coingecko: fetching prices", "coins", len(args.CoinIDs))
	return t.client.Prices(ctx, args.CoinIDs, args.VsCurrencies, args.IncludeCap, args.IncludeDayMove)
}

type searchTool struct{ client *Client }

func (t *searchTool) Name() string { return "coingecko.get_search" }
func (t *searchTool) Description() string {
	return "Search CoinGecko for coins, categories and markets by name or symbol"
}

func (t *searchTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search term",
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *searchTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing search input: %w", err)
	}
	if args.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	return t.client.Search(ctx, args.Query)
}

type historyTool struct{ client *Client }

func (t *historyTool) Name() string { return "coingecko.get_historical_data" }
func (t *historyTool) Description() string {
	return "Get historical price, market cap and volume for a coin on a given date"
}

func (t *historyTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coin_id": map[string]any{
				"type":        "string",
				"description": "CoinGecko coin ID, e.g. bitcoin",
			},
			"date": map[string]any{
				"type":        "string",
				"description": "Date in dd-mm-yyyy format",
			},
		},
		"required":             []string{"coin_id", "date"},
		"additionalProperties": false,
	}
}

func (t *historyTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		CoinID string `json:"coin_id"`
		Date   string `json:"date"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing historical data input: %w", err)
	}
	if args.CoinID == "" || args.Date == "" {
		return nil, fmt.Errorf("coin_id and date are required")
	}
	return t.client.History(ctx, args.CoinID, args.Date)
}

type ohlcTool struct{ client *Client }

func (t *ohlcTool) Name() string { return "coingecko.get_ohlc_data" }
func (t *ohlcTool) Description() string {
	return "Get OHLC candlestick data for a coin over the trailing number of days"
}

func (t *ohlcTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coin_id": map[string]any{
				"type":        "string",
				"description": "CoinGecko coin ID, e.g. bitcoin",
			},
			"vs_currency": map[string]any{
				"type":        "string",
				"description": "Quote currency, e.g. usd",
			},
			"days": map[string]any{
				"type":        "number",
				"description": "Trailing window in days: 1, 7, 14, 30, 90, 180 or 365",
			},
		},
		"required":             []string{"coin_id", "vs_currency", "days"},
		"additionalProperties": false,
	}
}

func (t *ohlcTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		CoinID     string `json:"coin_id"`
		VsCurrency string `json:"vs_currency"`
		Days       int    `json:"days"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing ohlc input: %w", err)
	}
	if args.CoinID == "" {
		return nil, fmt.Errorf("coin_id is required")
	}
	if args.VsCurrency == "" {
		args.VsCurrency = "usd"
	}
	if args.Days <= 0 {
		args.Days = 1
	}
	return t.client.OHLC(ctx, args.CoinID, args.VsCurrency, args.Days)
}

type categoriesTool struct{ client *Client }

func (t *categoriesTool) Name() string { return "coingecko.get_coin_categories" }
func (t *categoriesTool) Description() string {
	return "List all CoinGecko coin categories"
}

func (t *categoriesTool) InputSchema() any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func (t *categoriesTool) Execute(ctx context.Context, input string) (any, error) {
	return t.client.Categories(ctx)
}

type coinsByCategoryTool struct{ client *Client }

func (t *coinsByCategoryTool) Name() string { return "coingecko.get_coins_by_category" }
func (t *coinsByCategoryTool) Description() string {
	return "Get market data for coins belonging to a CoinGecko category"
}

func (t *coinsByCategoryTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Category ID, e.g. layer-1",
			},
			"vs_currency": map[string]any{
				"type":        "string",
				"description": "Quote currency, e.g. usd",
			},
			"per_page": map[string]any{
				"type":        "number",
				"description": "Results per page (max 250)",
			},
			"page": map[string]any{
				"type":        "number",
				"description": "Page number, starting at 1",
			},
		},
		"required":             []string{"category", "vs_currency", "per_page", "page"},
		"additionalProperties": false,
	}
}

func (t *coinsByCategoryTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		Category   string `json:"category"`
		VsCurrency string `json:"vs_currency"`
		PerPage    int    `json:"per_page"`
		Page       int    `json:"page"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing coins by category input: %w", err)
	}
	if args.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if args.VsCurrency == "" {
		args.VsCurrency = "usd"
	}
	if args.PerPage <= 0 || args.PerPage > 250 {
		args.PerPage = 50
	}
	if args.Page <= 0 {
		args.Page = 1
	}
	return t.client.CoinsByCategory(ctx, args.Category, args.VsCurrency, args.PerPage, args.Page)
}
