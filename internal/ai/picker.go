package ai

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/internal/personality"
	"github.com/duelist/stockduel/pkg/logger"
)

// Fixed fallback pool used when sourcing comes up short, and for fully
// synthetic picks when the provider is down entirely.
var fallbackPool = []string{
	"AAPL", "MSFT", "GOOG", "AMZN", "TSLA", "META", "NVDA", "JPM", "V", "JNJ",
}

// Baseline data for the fallback pool, used only when the provider
// cannot be reached at all.
type fallbackBaseline struct {
	name   string
	price  float64
	sector string
}

var fallbackBaselines = map[string]fallbackBaseline{
	"AAPL": {"Apple Inc.", 190, "Technology"},
	"MSFT": {"Microsoft Corp.", 420, "Technology"},
	"GOOG": {"Alphabet Inc.", 165, "Communication Services"},
	"AMZN": {"Amazon.com Inc.", 185, "Consumer Discretionary"},
	"TSLA": {"Tesla Inc.", 250, "Consumer Discretionary"},
	"META": {"Meta Platforms Inc.", 500, "Communication Services"},
	"NVDA": {"NVIDIA Corp.", 130, "Technology"},
	"JPM":  {"JPMorgan Chase & Co.", 210, "Financials"},
	"V":    {"Visa Inc.", 280, "Financials"},
	"JNJ":  {"Johnson & Johnson", 155, "Healthcare"},
}

// Representative market caps per bucket, for averaging user entries
// that only carry a bucket label.
var bucketCaps = map[string]float64{
	contracts.CapLarge: 50_000_000_000,
	contracts.CapMid:   5_000_000_000,
	contracts.CapSmall: 1_000_000_000,
}

// Picker produces the AI side of a bracket: exactly size entries whose
// symbols never collide with the user's. Degrades through criteria
// relaxation, the fallback pool and finally fully synthetic entries;
// it never fails upward.
type Picker struct {
	registry *personality.Registry
	sourcer  *Sourcer
	ranker   *Ranker
	assigner *DirectionAssigner
	market   contracts.MarketData
	rng      *rand.Rand
	logger   *logger.Logger
}

// NewPicker wires the picker
func NewPicker(
	registry *personality.Registry,
	sourcer *Sourcer,
	ranker *Ranker,
	assigner *DirectionAssigner,
	market contracts.MarketData,
	rng *rand.Rand,
	log *logger.Logger,
) *Picker {
	return &Picker{
		registry: registry,
		sourcer:  sourcer,
		ranker:   ranker,
		assigner: assigner,
		market:   market,
		rng:      rng,
		logger:   log,
	}
}

// Pick builds the AI entries for a bracket
func (p *Picker) Pick(ctx context.Context, id contracts.PersonalityID, size int, userEntries []contracts.Entry, tf contracts.Timeframe) []contracts.Entry {
	exclude := make(map[string]bool, len(userEntries))
	userSectors := make([]string, 0, len(userEntries))
	for _, e := range userEntries {
		exclude[e.Symbol] = true
		if e.Sector != "" {
			userSectors = append(userSectors, e.Sector)
		}
	}

	criteria := p.deriveCriteria(id, userEntries, userSectors)
	criteria.ExcludeSymbols = exclude

	// First pass
	pool := p.sourcer.Source(ctx, criteria)

	// Relax once: drop the sector constraint, halve the cap floor
	if len(pool) < size {
		relaxed := criteria
		relaxed.Sectors = nil
		relaxed.MinMarketCap /= 2

		pool = mergeCandidates(pool, p.sourcer.Source(ctx, relaxed))
		p.logger.WithFields(map[string]interface{}{
			"personality": id,
			"candidates":  len(pool),
		}).Debug("Criteria relaxed for AI pick")
	}

	// Still short: top up from the fixed fallback pool with live data
	if len(pool) < size {
		pool = p.appendFallback(ctx, pool, exclude, 2*size)
	}

	// Provider completely dark: synthesize the whole side
	if len(pool) < size {
		p.logger.WithField("personality", id).Warn("Market data unavailable, using synthetic AI picks")
		return p.syntheticEntries(size, exclude)
	}

	ranked := p.ranker.Rank(pool, id)
	if len(ranked) > size {
		ranked = ranked[:size]
	}

	entries := make([]contracts.Entry, 0, size)
	for i, c := range ranked {
		entries = append(entries, contracts.Entry{
			Symbol:     c.Symbol,
			Name:       c.Name,
			AssetType:  assetTypeOrStock(c.AssetType),
			Direction:  p.assigner.Assign(c, id, tf),
			StartPrice: c.Price,
			CapBucket:  contracts.CapBucket(c.MarketCap),
			Sector:     c.Sector,
			Order:      i + 1,
		})
	}

	return entries
}

// deriveCriteria maps a personality plus the user's holdings onto a
// sourcing preset. Every preset excludes the user's symbols; the rest
// shades cap floors and sector bias per archetype.
func (p *Picker) deriveCriteria(id contracts.PersonalityID, userEntries []contracts.Entry, userSectors []string) SourceCriteria {
	avgCap := averageUserCap(userEntries)

	profile, err := p.registry.Get(id)
	if err != nil {
		// Unknown personality: no bias, the ranker will shuffle
		return SourceCriteria{MinMarketCap: avgCap / 2}
	}

	switch id {
	case contracts.ValueHunter:
		return SourceCriteria{
			MinMarketCap: avgCap / 2,
			Sectors:      profile.FavoredSectors,
			PreferValue:  true, PreferHighDividend: true,
		}
	case contracts.MomentumTrader:
		return SourceCriteria{
			MinMarketCap:   avgCap / 4,
			Sectors:        profile.FavoredSectors,
			PreferMomentum: true,
		}
	case contracts.TrendFollower:
		return SourceCriteria{
			MinMarketCap:   avgCap / 2,
			Sectors:        profile.FavoredSectors,
			PreferMomentum: true,
		}
	case contracts.ContraThinker:
		// Bias toward sectors the user does not hold
		return SourceCriteria{
			MinMarketCap: avgCap / 4,
			Sectors:      sectorsWithout(profile.FavoredSectors, userSectors),
		}
	case contracts.GrowthSeeker:
		return SourceCriteria{
			MinMarketCap: avgCap / 4,
			Sectors:      profile.FavoredSectors,
			PreferGrowth: true,
		}
	case contracts.DividendCollector:
		return SourceCriteria{
			MinMarketCap:       avgCap,
			Sectors:            profile.FavoredSectors,
			PreferHighDividend: true,
		}
	default:
		return SourceCriteria{MinMarketCap: avgCap / 2}
	}
}

// appendFallback fetches live quotes for the fixed pool symbols until
// the pool reaches target or the symbols run out. Individual lookup
// failures are skipped.
func (p *Picker) appendFallback(ctx context.Context, pool []contracts.CandidateStock, exclude map[string]bool, target int) []contracts.CandidateStock {
	have := make(map[string]bool, len(pool))
	for _, c := range pool {
		have[c.Symbol] = true
	}

	for _, symbol := range fallbackPool {
		if len(pool) >= target {
			break
		}
		if have[symbol] || exclude[symbol] {
			continue
		}

		quote, err := p.market.GetQuote(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Debug("Fallback quote lookup failed")
			continue
		}

		pool = append(pool, candidateFromQuote(quote))
		have[symbol] = true
	}

	return pool
}

// syntheticEntries builds exactly size entries from baseline data with
// random directions. Last resort when no quote can be fetched at all.
// When the user's symbols eat too much of the fixed pool, placeholder
// symbols pad the remainder so the AI side always comes back full.
func (p *Picker) syntheticEntries(size int, exclude map[string]bool) []contracts.Entry {
	entries := make([]contracts.Entry, 0, size)

	for _, symbol := range fallbackPool {
		if len(entries) >= size {
			break
		}
		if exclude[symbol] {
			continue
		}
		entries = append(entries, p.syntheticEntry(symbol, fallbackBaselines[symbol], len(entries)+1))
	}

	for n := 1; len(entries) < size; n++ {
		symbol := fmt.Sprintf("SYN%d", n)
		if exclude[symbol] {
			continue
		}
		base := fallbackBaselines[fallbackPool[(n-1)%len(fallbackPool)]]
		base.name = fmt.Sprintf("Synthetic Pick %d", n)
		entries = append(entries, p.syntheticEntry(symbol, base, len(entries)+1))
	}

	return entries
}

func (p *Picker) syntheticEntry(symbol string, base fallbackBaseline, order int) contracts.Entry {
	direction := contracts.Bullish
	if p.rng.Float64() < 0.5 {
		direction = contracts.Bearish
	}

	return contracts.Entry{
		Symbol:     symbol,
		Name:       base.name,
		AssetType:  "stock",
		Direction:  direction,
		StartPrice: base.price,
		CapBucket:  contracts.CapLarge,
		Sector:     base.sector,
		Order:      order,
	}
}

// candidateFromQuote converts a live quote to a rankable candidate
func candidateFromQuote(q *contracts.Quote) contracts.CandidateStock {
	c := contracts.CandidateStock{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         q.Price,
		ChangePercent: q.ChangePercent,
		Sector:        q.Sector,
		MarketCap:     q.MarketCap,
		AssetType:     q.AssetType,
	}
	if q.PERatio != nil {
		c.PERatio = *q.PERatio
	}
	if q.DividendYield != nil {
		c.DividendYield = *q.DividendYield
	}
	return c
}

// averageUserCap estimates the user's average market cap from bucket
// labels
func averageUserCap(entries []contracts.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		capValue, ok := bucketCaps[e.CapBucket]
		if !ok {
			capValue = bucketCaps[contracts.CapMid]
		}
		sum += capValue
	}
	return sum / float64(len(entries))
}

// mergeCandidates appends extras, keeping first occurrences
func mergeCandidates(pool, extras []contracts.CandidateStock) []contracts.CandidateStock {
	seen := make(map[string]bool, len(pool))
	for _, c := range pool {
		seen[c.Symbol] = true
	}
	for _, c := range extras {
		if seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		pool = append(pool, c)
	}
	return pool
}

// sectorsWithout returns sectors minus any the user already holds
func sectorsWithout(sectors, held []string) []string {
	heldSet := make(map[string]bool, len(held))
	for _, s := range held {
		heldSet[s] = true
	}
	out := make([]string, 0, len(sectors))
	for _, s := range sectors {
		if !heldSet[s] {
			out = append(out, s)
		}
	}
	return out
}

func assetTypeOrStock(t string) string {
	if t == "" {
		return "stock"
	}
	return t
}
