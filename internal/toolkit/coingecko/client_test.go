package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendingSendsAPIKey(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-cg-demo-api-key")
		assert.Equal(t, "/search/trending", r.URL.Path)
		w.Write([]byte(`{"coins":[{"item":{"id":"bitcoin"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "cg-test-key", BaseURL: srv.URL})
	raw, err := client.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cg-test-key", gotHeader)

	var payload struct {
		Coins []struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"coins"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Coins, 1)
	assert.Equal(t, "bitcoin", payload.Coins[0].Item.ID)
}

func TestPricesBuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bitcoin,ethereum", q.Get("ids"))
		assert.Equal(t, "usd,eur", q.Get("vs_currencies"))
		assert.Equal(t, "true", q.Get("include_market_cap"))
		assert.Equal(t, "false", q.Get("include_24hr_change"))
		w.Write([]byte(`{"bitcoin":{"usd":60000}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	raw, err := client.Prices(context.Background(), []string{"bitcoin", "ethereum"}, []string{"usd", "eur"}, true, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bitcoin":{"usd":60000}}`, string(raw))
}

func TestOHLCBuildsPathAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/ohlc", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.Write([]byte(`[[1700000000000,35000,35500,34800,35200]]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	raw, err := client.OHLC(context.Background(), "bitcoin", "usd", 7)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

func TestErrorStatusIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":{"error_message":"rate limited"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Trending(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestInvalidJSONIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Search(context.Background(), "bitcoin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestPluginListsAllTools(t *testing.T) {
	p := NewPlugin(Config{APIKey: "k"})
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 7)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Name()] = true
		assert.NotEmpty(t, tool.Description())
		assert.NotNil(t, tool.InputSchema())
	}
	assert.True(t, names["coingecko.get_trending_coins"])
	assert.True(t, names["coingecko.get_coin_prices"])
	assert.True(t, names["coingecko.get_ohlc_data"])
}

func TestPricesToolRequiresCoinIDs(t *testing.T) {
	p := NewPlugin(Config{})
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)

	var prices *pricesTool
	for _, tool := range tools {
		if pt, ok := tool.(*pricesTool); ok {
			prices = pt
		}
	}
	require.NotNil(t, prices)

	_, err = prices.Execute(context.Background(), `{"coin_ids":[],"vs_currencies":["usd"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coin_ids")
}
