package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/duelist/stockduel/internal/contracts"
)

// fakeMarket is a deterministic MarketData for tests. Search returns
// the canned candidates whose sector or tag matches the query; GetQuote
// serves from the quotes map.
type fakeMarket struct {
	mu         sync.Mutex
	candidates []contracts.CandidateStock
	quotes     map[string]*contracts.Quote
	searchErr  map[string]bool // queries that silently return nothing
	quoteDown  bool            // every GetQuote fails with ErrUnavailable
	searchCall int
	quoteCalls int
}

func (f *fakeMarket) Search(ctx context.Context, query string, limit int) []contracts.CandidateStock {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCall++

	if f.searchErr[query] {
		return nil
	}

	var out []contracts.CandidateStock
	for _, c := range f.candidates {
		if strings.EqualFold(c.Sector, query) || matchesCategory(c, query) {
			out = append(out, c)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (f *fakeMarket) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++

	if f.quoteDown {
		return nil, contracts.ErrUnavailable
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", symbol, contracts.ErrSymbolNotFound)
	}
	return q, nil
}

func matchesCategory(c contracts.CandidateStock, query string) bool {
	switch query {
	case "technology":
		return c.Sector == "Technology"
	case "dividend":
		return c.DividendYield > 2
	case "growth":
		return c.Growth > 10
	case "blue chip":
		return c.MarketCap >= 100_000_000_000
	}
	return false
}

func candidate(symbol, sector string, price, change, marketCap float64) contracts.CandidateStock {
	return contracts.CandidateStock{
		Symbol:        symbol,
		Name:          symbol + " Corp.",
		Price:         price,
		ChangePercent: change,
		Sector:        sector,
		MarketCap:     marketCap,
		AssetType:     "stock",
	}
}
