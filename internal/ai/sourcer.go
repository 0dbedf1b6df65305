package ai

import (
	"context"
	"sync"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/logger"
)

// Generic category terms used when no sector preference is given
var genericCategories = []string{"technology", "dividend", "blue chip", "growth"}

// How many symbols each sector/category query may return
const searchLimit = 20

// SourceCriteria filters the candidate pool
type SourceCriteria struct {
	MinMarketCap   float64
	MaxMarketCap   float64 // 0 means unbounded
	Sectors        []string
	ExcludeSymbols map[string]bool

	// Preference flags; the ranker does the heavy lifting, these only
	// shade which category terms get queried
	PreferHighDividend bool
	PreferGrowth       bool
	PreferValue        bool
	PreferMomentum     bool
}

// categoryTerms maps the preference flags onto generic query terms.
func (c SourceCriteria) categoryTerms() []string {
	var terms []string
	if c.PreferValue {
		terms = append(terms, "blue chip")
	}
	if c.PreferHighDividend {
		terms = append(terms, "dividend")
	}
	if c.PreferGrowth {
		terms = append(terms, "growth")
	}
	if c.PreferMomentum {
		terms = append(terms, "technology")
	}
	return terms
}

// Sourcer builds a de-duplicated candidate pool from the market-data
// provider. Queries fan out concurrently; a failed or empty query is
// logged and skipped, never fatal.
type Sourcer struct {
	market contracts.MarketData
	usage  contracts.UsageRecorder
	logger *logger.Logger
}

// NewSourcer creates a sourcer
func NewSourcer(market contracts.MarketData, usage contracts.UsageRecorder, log *logger.Logger) *Sourcer {
	if usage == nil {
		usage = contracts.NopUsageRecorder{}
	}
	return &Sourcer{
		market: market,
		usage:  usage,
		logger: log,
	}
}

// Source returns the pooled, filtered candidates for the criteria
func (s *Sourcer) Source(ctx context.Context, criteria SourceCriteria) []contracts.CandidateStock {
	queries := append([]string{}, criteria.Sectors...)
	for _, term := range criteria.categoryTerms() {
		if !containsQuery(queries, term) {
			queries = append(queries, term)
		}
	}
	if len(queries) == 0 {
		queries = genericCategories
	}

	// One provider call per query, issued concurrently; results keep
	// query order so de-duplication is deterministic
	results := make([][]contracts.CandidateStock, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()

			found := s.market.Search(ctx, q, searchLimit)
			s.usage.RecordCall("search", len(found) > 0)

			if len(found) == 0 {
				s.logger.WithField("query", q).Debug("Candidate query returned nothing")
			}
			results[i] = found
		}(i, q)
	}
	wg.Wait()

	// Pool, de-duplicate (first occurrence wins) and post-filter
	seen := make(map[string]bool)
	pool := make([]contracts.CandidateStock, 0, len(queries)*searchLimit)

	for _, batch := range results {
		for _, c := range batch {
			if seen[c.Symbol] || criteria.ExcludeSymbols[c.Symbol] {
				continue
			}
			if !s.withinCapBounds(c, criteria) {
				continue
			}
			seen[c.Symbol] = true
			pool = append(pool, c)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"queries":    len(queries),
		"candidates": len(pool),
	}).Debug("Candidate sourcing completed")

	return pool
}

func containsQuery(queries []string, term string) bool {
	for _, q := range queries {
		if q == term {
			return true
		}
	}
	return false
}

// withinCapBounds applies the market-cap post-filter
func (s *Sourcer) withinCapBounds(c contracts.CandidateStock, criteria SourceCriteria) bool {
	if criteria.MinMarketCap > 0 && c.MarketCap < criteria.MinMarketCap {
		return false
	}
	if criteria.MaxMarketCap > 0 && c.MarketCap > criteria.MaxMarketCap {
		return false
	}
	return true
}
