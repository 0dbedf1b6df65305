package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/config"
	"github.com/duelist/stockduel/pkg/httputil"
	"github.com/duelist/stockduel/pkg/logger"
	"github.com/duelist/stockduel/pkg/redis"
)

// Client talks to the quote provider. All provider HTTP traffic goes
// through here: quotes and candidate search via the JSON API, sector
// scraping via the profile pages when the API response omits it.
//
// Quotes and searches are cached in Redis; when Redis is disabled the
// distributed limiter degrades to a no-op and a local token bucket
// keeps the provider's per-second budget instead.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	local      *rate.Limiter
	logger     *logger.Logger

	baseURL    string
	profileURL string
	apiKey     string
	cacheTTL   time.Duration
}

var _ contracts.MarketData = (*Client)(nil)

// NewClient creates a new market data client
func NewClient(cfg *config.Config, rdb *redis.Client, log *logger.Logger) *Client {
	httpClient := httputil.New(log, cfg.MarketData.Timeout)
	if rdb.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "stockduel"), redis.QuoteAPIRateLimit)
	}

	return &Client{
		httpClient: httpClient,
		cache:      redis.NewCache(rdb, "stockduel"),
		local:      rate.NewLimiter(rate.Limit(cfg.MarketData.RateLimit), cfg.MarketData.RateLimit),
		logger:     log,
		baseURL:    cfg.MarketData.BaseURL,
		profileURL: cfg.MarketData.ProfileURL,
		apiKey:     cfg.MarketData.APIKey,
		cacheTTL:   cfg.Duel.QuoteCacheTTL,
	}
}

// quotePayload is the provider's quote response shape
type quotePayload struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	ChangePercent float64  `json:"changesPercentage"`
	Sector        string   `json:"sector"`
	MarketCap     float64  `json:"marketCap"`
	PERatio       *float64 `json:"pe"`
	DividendYield *float64 `json:"dividendYield"`
	AssetType     string   `json:"type"`
}

// GetQuote fetches a point-in-time quote for one symbol.
// Fails with ErrSymbolNotFound for unknown symbols and ErrUnavailable
// when the provider cannot be reached.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	cacheKey := redis.QuoteKey(symbol)

	var cached contracts.Quote
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	body, err := c.fetchJSON(ctx, fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(symbol)), nil)
	if err != nil {
		return nil, err
	}

	// The provider answers single-symbol lookups with a one-element array
	var payload []quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("quote %s: %w", symbol, contracts.ErrSymbolNotFound)
	}

	quote := toQuote(payload[0])

	// The quote endpoint drops sector for some listings; the profile
	// page still carries it
	if quote.Sector == "" && c.profileURL != "" {
		if sector, err := c.scrapeSector(ctx, symbol); err == nil {
			quote.Sector = sector
		}
	}

	if err := c.cache.Set(ctx, cacheKey, quote, c.cacheTTL); err != nil {
		c.logger.WithError(err).Debug("Quote cache write failed")
	}

	return quote, nil
}

// searchPayload is one row of the provider's screener response
type searchPayload struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"companyName"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changesPercentage"`
	Sector        string  `json:"sector"`
	MarketCap     float64 `json:"marketCap"`
	PERatio       float64 `json:"pe"`
	DividendYield float64 `json:"dividendYield"`
	Growth        float64 `json:"revenueGrowth"`
	AssetType     string  `json:"type"`
}

// Search returns candidates matching a sector or category query.
// It never fails: transient provider errors are logged and swallowed,
// the caller sees an empty list.
func (c *Client) Search(ctx context.Context, query string, limit int) []contracts.CandidateStock {
	cacheKey := redis.SearchKey(query, limit)

	var cached []contracts.CandidateStock
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", limit))

	body, err := c.fetchJSON(ctx, c.baseURL+"/search", params)
	if err != nil {
		c.logger.WithError(err).WithField("query", query).Warn("Candidate search failed")
		return nil
	}

	var payload []searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.WithError(err).WithField("query", query).Warn("Failed to decode search response")
		return nil
	}

	out := make([]contracts.CandidateStock, 0, len(payload))
	for _, p := range payload {
		out = append(out, contracts.CandidateStock{
			Symbol:        p.Symbol,
			Name:          p.Name,
			Price:         p.Price,
			ChangePercent: p.ChangePercent,
			Sector:        p.Sector,
			MarketCap:     p.MarketCap,
			PERatio:       p.PERatio,
			DividendYield: p.DividendYield,
			Growth:        p.Growth,
			AssetType:     p.AssetType,
		})
	}

	if err := c.cache.Set(ctx, cacheKey, out, redis.TTLSearch); err != nil {
		c.logger.WithError(err).Debug("Search cache write failed")
	}

	return out
}

// fetchJSON performs one rate-limited GET against the provider
func (c *Client) fetchJSON(ctx context.Context, fullURL string, params url.Values) ([]byte, error) {
	if err := c.local.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", contracts.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, contracts.ErrSymbolNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("provider status %d: %w", resp.StatusCode, contracts.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func toQuote(p quotePayload) *contracts.Quote {
	return &contracts.Quote{
		Symbol:        p.Symbol,
		Name:          p.Name,
		Price:         p.Price,
		ChangePercent: p.ChangePercent,
		Sector:        p.Sector,
		MarketCap:     p.MarketCap,
		PERatio:       p.PERatio,
		DividendYield: p.DividendYield,
		AssetType:     assetTypeOrStock(p.AssetType),
	}
}

func assetTypeOrStock(t string) string {
	if t == "" {
		return "stock"
	}
	return t
}
