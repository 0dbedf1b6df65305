package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/config"
	"github.com/duelist/stockduel/pkg/logger"
	"github.com/duelist/stockduel/pkg/redis"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		MarketData: config.MarketDataConfig{
			BaseURL:    srv.URL,
			ProfileURL: srv.URL + "/profile",
			APIKey:     "test-key",
			Timeout:    2 * time.Second,
			RateLimit:  1000,
		},
		Duel: config.DuelConfig{QuoteCacheTTL: time.Minute},
	}

	rdb, err := redis.New(cfg) // disabled, cache and limiter no-op
	require.NoError(t, err)

	return NewClient(cfg, rdb, logger.NewNop()), srv
}

func TestGetQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `[{"symbol":"AAPL","name":"Apple Inc","price":187.5,"changesPercentage":1.2,"sector":"Technology","marketCap":2900000000000,"pe":31.4,"type":""}]`)
	})

	client, _ := newTestClient(t, mux)

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc", quote.Name)
	assert.Equal(t, 187.5, quote.Price)
	assert.Equal(t, 1.2, quote.ChangePercent)
	assert.Equal(t, "Technology", quote.Sector)
	require.NotNil(t, quote.PERatio)
	assert.Equal(t, 31.4, *quote.PERatio)
	assert.Nil(t, quote.DividendYield)
	assert.Equal(t, "stock", quote.AssetType) // empty type defaults
}

func TestGetQuoteSymbolNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/NOPE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/quote/EMPTY", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.GetQuote(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, contracts.ErrSymbolNotFound))

	// An empty array is the provider's other way of saying unknown
	_, err = client.GetQuote(context.Background(), "EMPTY")
	assert.True(t, errors.Is(err, contracts.ErrSymbolNotFound))
}

func TestGetQuoteProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, contracts.ErrUnavailable))
}

func TestGetQuoteScrapesMissingSector(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/XOM", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"XOM","name":"Exxon Mobil","price":110,"marketCap":450000000000}]`)
	})
	mux.HandleFunc("/profile/XOM", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><dl><dt>Industry</dt><dd>Oil &amp; Gas</dd><dt>Sector</dt><dd> Energy </dd></dl></body></html>`)
	})

	client, _ := newTestClient(t, mux)

	quote, err := client.GetQuote(context.Background(), "XOM")
	require.NoError(t, err)
	assert.Equal(t, "Energy", quote.Sector)
}

func TestGetQuoteSectorScrapeFailureIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/ODD", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"ODD","name":"Oddity","price":42}]`)
	})
	// No profile route: the scrape 404s, the quote still comes back

	client, _ := newTestClient(t, mux)

	quote, err := client.GetQuote(context.Background(), "ODD")
	require.NoError(t, err)
	assert.Empty(t, quote.Sector)
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "technology", r.URL.Query().Get("query"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[
			{"symbol":"MSFT","companyName":"Microsoft","price":420,"sector":"Technology","marketCap":3100000000000,"pe":35,"revenueGrowth":14},
			{"symbol":"NVDA","companyName":"NVIDIA","price":880,"sector":"Technology","marketCap":2200000000000,"pe":65,"revenueGrowth":120}
		]`)
	})

	client, _ := newTestClient(t, mux)

	got := client.Search(context.Background(), "technology", 20)
	require.Len(t, got, 2)
	assert.Equal(t, "MSFT", got[0].Symbol)
	assert.Equal(t, "Microsoft", got[0].Name)
	assert.Equal(t, 14.0, got[0].Growth)
	assert.Equal(t, "NVDA", got[1].Symbol)
}

func TestSearchNeverFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "busted":
			w.WriteHeader(http.StatusBadRequest)
		case "garbled":
			fmt.Fprint(w, `{not json`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	assert.Empty(t, client.Search(ctx, "busted", 10))
	assert.Empty(t, client.Search(ctx, "garbled", 10))
	assert.Empty(t, client.Search(ctx, "nothing", 10))
}

func TestExtractSectorMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/BARE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"BARE","price":5}]`)
	})
	mux.HandleFunc("/profile/BARE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No details.</p></body></html>`)
	})

	client, _ := newTestClient(t, mux)

	quote, err := client.GetQuote(context.Background(), "BARE")
	require.NoError(t, err)
	assert.Empty(t, quote.Sector)
}
