package handlers

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duelist/stockduel/internal/ai"
	"github.com/duelist/stockduel/internal/bracket"
	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/internal/personality"
	"github.com/duelist/stockduel/pkg/logger"
)

// stubMarket serves fixed quotes for the handler tests
type stubMarket struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (m *stubMarket) GetQuote(_ context.Context, symbol string) (*contracts.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	price, ok := m.prices[symbol]
	if !ok {
		return nil, contracts.ErrSymbolNotFound
	}
	return &contracts.Quote{
		Symbol:    symbol,
		Name:      symbol + " Inc",
		Price:     price,
		Sector:    "Technology",
		MarketCap: 50_000_000_000,
		AssetType: "stock",
	}, nil
}

func (m *stubMarket) Search(context.Context, string, int) []contracts.CandidateStock {
	return nil
}

func (m *stubMarket) setPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

type testEnv struct {
	service  *bracket.Service
	registry *personality.Registry
	market   *stubMarket
	now      time.Time
	nowMu    sync.Mutex
}

func (e *testEnv) setNow(t time.Time) {
	e.nowMu.Lock()
	defer e.nowMu.Unlock()
	e.now = t
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	market := &stubMarket{prices: map[string]float64{
		"AAPL": 100, "MSFT": 200, "GOOGL": 50, "AMZN": 150, "TSLA": 250,
		"META": 300, "NVDA": 400, "JPM": 120, "V": 220, "JNJ": 160, "GOOG": 140,
	}}

	rng := rand.New(rand.NewSource(11))
	log := logger.NewNop()
	registry := personality.NewRegistry(rng)
	sourcer := ai.NewSourcer(market, contracts.NopUsageRecorder{}, log)
	picker := ai.NewPicker(registry, sourcer, ai.NewRanker(rng), ai.NewDirectionAssigner(rng), market, rng, log)
	service := bracket.NewService(bracket.NewMemStore(), market, registry, picker, nil, log, 1)

	env := &testEnv{
		service:  service,
		registry: registry,
		market:   market,
		now:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	service.WithClock(func() time.Time {
		env.nowMu.Lock()
		defer env.nowMu.Unlock()
		return env.now
	})
	return env
}

func (e *testEnv) createBracket(t *testing.T) *contracts.Bracket {
	t.Helper()

	b, err := e.service.CreateBracket(context.Background(), bracket.CreateParams{
		UserID:    "alice",
		Timeframe: contracts.TimeframeDaily,
		Size:      3,
		UserEntries: []bracket.EntryParams{
			{Symbol: "AAPL", Direction: contracts.Bullish},
			{Symbol: "MSFT", Direction: contracts.Bullish},
			{Symbol: "GOOGL", Direction: contracts.Bearish},
		},
	})
	require.NoError(t, err)
	return b
}
