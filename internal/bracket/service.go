package bracket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duelist/stockduel/internal/ai"
	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/internal/personality"
	"github.com/duelist/stockduel/pkg/logger"
)

// EntryParams is one user pick submitted at creation time
type EntryParams struct {
	Symbol    string              `json:"symbol"`
	Direction contracts.Direction `json:"direction"`

	// Optional price hint used when the creation-time quote fails;
	// refresh backfills a real start price on the first cycle.
	StartPrice float64 `json:"start_price,omitempty"`
}

// CreateParams describes a new bracket
type CreateParams struct {
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	Timeframe   contracts.Timeframe `json:"timeframe"`
	Size        int                 `json:"size"`
	UserEntries []EntryParams       `json:"user_entries"`

	// Optional; when empty an opponent is chosen to contrast the
	// user's sectors at the given difficulty.
	PersonalityID contracts.PersonalityID `json:"personality_id,omitempty"`
	Difficulty    string                  `json:"difficulty,omitempty"`
}

// Service owns bracket creation and the time-driven lifecycle. Status
// moves pending -> active -> completed, at most one step per refresh;
// mutation of one bracket is serialized behind a per-id lock while the
// price fan-out runs unlocked.
type Service struct {
	store    contracts.BracketStore
	market   contracts.MarketData
	registry *personality.Registry
	picker   *ai.Picker
	usage    contracts.UsageRecorder
	logger   *logger.Logger

	now            func() time.Time
	refreshRetries int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the bracket service
func NewService(
	store contracts.BracketStore,
	market contracts.MarketData,
	registry *personality.Registry,
	picker *ai.Picker,
	usage contracts.UsageRecorder,
	log *logger.Logger,
	refreshRetries int,
) *Service {
	if usage == nil {
		usage = contracts.NopUsageRecorder{}
	}
	if refreshRetries < 0 {
		refreshRetries = 0
	}
	return &Service{
		store:          store,
		market:         market,
		registry:       registry,
		picker:         picker,
		usage:          usage,
		logger:         log,
		now:            time.Now,
		refreshRetries: refreshRetries,
		locks:          make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the wall clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateBracket validates the request, fills both sides and persists
// the new bracket. Market-data degradation never fails creation; the
// AI side falls back per the picker and user start prices are
// backfilled on the first refresh when the creation-time quote fails.
func (s *Service) CreateBracket(ctx context.Context, params CreateParams) (*contracts.Bracket, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	userEntries, degraded := s.buildUserEntries(ctx, params.UserEntries)

	profile, err := s.resolvePersonality(params, userEntries)
	if err != nil {
		return nil, err
	}

	aiEntries := s.picker.Pick(ctx, profile.ID, params.Size, userEntries, params.Timeframe)

	matches, err := BuildMatches(params.Size)
	if err != nil {
		return nil, err
	}

	now := s.now()
	name := params.Name
	if name == "" {
		name = fmt.Sprintf("%s vs %s", params.UserID, profile.Name)
	}

	b := &contracts.Bracket{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Name:           name,
		Timeframe:      params.Timeframe,
		Size:           params.Size,
		Status:         contracts.StatusPending,
		PersonalityID:  profile.ID,
		UserEntries:    userEntries,
		AIEntries:      aiEntries,
		Matches:        matches,
		StartDate:      now,
		EndDate:        now.Add(params.Timeframe.Duration()),
		PartialRefresh: degraded,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bracket: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"bracket_id":  b.ID,
		"user_id":     b.UserID,
		"size":        b.Size,
		"personality": b.PersonalityID,
	}).Info("Bracket created")

	return b, nil
}

// GetBracket loads one bracket
func (s *Service) GetBracket(ctx context.Context, id string) (*contracts.Bracket, error) {
	return s.store.Load(ctx, id)
}

// ListUserBrackets lists a user's brackets
func (s *Service) ListUserBrackets(ctx context.Context, userID string) ([]*contracts.Bracket, error) {
	return s.store.ListByUser(ctx, userID)
}

// RefreshBracket re-fetches prices for every entry, recomputes percent
// changes and advances the lifecycle by at most one step. Completed
// brackets are returned untouched. Symbol failures after the retry
// budget leave that entry stale and flag the bracket as partially
// refreshed; the error is absorbed, not surfaced.
func (s *Service) RefreshBracket(ctx context.Context, id string) (*contracts.Bracket, error) {
	lock := s.bracketLock(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Idempotent on completed brackets
	if b.Status == contracts.StatusCompleted {
		return b, nil
	}

	prices, failed := s.fetchPrices(ctx, b)
	s.applyPrices(b, prices)
	b.PartialRefresh = len(failed) > 0

	now := s.now()
	switch {
	case !now.Before(b.EndDate):
		scored, err := Score(b)
		if err != nil {
			// Entries still unresolved: stay active, try next cycle
			s.logger.WithError(err).WithField("bracket_id", b.ID).Warn("Bracket past end date but not scorable")
			if b.Status == contracts.StatusPending {
				b.Status = contracts.StatusActive
			}
		} else {
			b = scored
			s.logger.WithFields(map[string]interface{}{
				"bracket_id":  b.ID,
				"winner":      b.Winner,
				"user_points": b.UserPoints,
				"ai_points":   b.AIPoints,
			}).Info("Bracket completed")
		}
	case !now.Before(b.StartDate) && b.Status == contracts.StatusPending:
		b.Status = contracts.StatusActive
	}

	b.UpdatedAt = now
	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save refreshed bracket: %w", err)
	}

	return b, nil
}

// RefreshAll sweeps every non-completed bracket. Per-bracket failures
// are logged and skipped so one bad bracket cannot stall the cycle.
func (s *Service) RefreshAll(ctx context.Context) error {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active brackets: %w", err)
	}

	for _, b := range active {
		if _, err := s.RefreshBracket(ctx, b.ID); err != nil {
			s.logger.WithError(err).WithField("bracket_id", b.ID).Error("Bracket refresh failed")
		}
	}

	s.logger.WithField("count", len(active)).Debug("Bracket refresh sweep completed")
	return nil
}

// fetchPrices fans out one lookup per distinct symbol, each with a
// bounded retry, and fans results back in. Entries do not share state
// during the fetch, so no lock is held here.
func (s *Service) fetchPrices(ctx context.Context, b *contracts.Bracket) (map[string]float64, []string) {
	symbols := make([]string, 0, len(b.UserEntries)+len(b.AIEntries))
	seen := make(map[string]bool)
	for _, e := range append(append([]contracts.Entry{}, b.UserEntries...), b.AIEntries...) {
		if !seen[e.Symbol] {
			seen[e.Symbol] = true
			symbols = append(symbols, e.Symbol)
		}
	}

	type result struct {
		symbol string
		price  float64
		err    error
	}

	results := make(chan result, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			var price float64
			var err error
			for attempt := 0; attempt <= s.refreshRetries; attempt++ {
				var quote *contracts.Quote
				quote, err = s.market.GetQuote(ctx, symbol)
				s.usage.RecordCall("quote", err == nil)
				if err == nil {
					price = quote.Price
					break
				}
				// Unknown symbols never resolve on retry
				if errors.Is(err, contracts.ErrSymbolNotFound) {
					break
				}
			}
			results <- result{symbol: symbol, price: price, err: err}
		}(symbol)
	}

	wg.Wait()
	close(results)

	prices := make(map[string]float64, len(symbols))
	var failed []string
	for r := range results {
		if r.err != nil {
			failed = append(failed, r.symbol)
			continue
		}
		prices[r.symbol] = r.price
	}

	if len(failed) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"bracket_id": b.ID,
			"symbols":    strings.Join(failed, ","),
		}).Warn("Symbols left stale after retries")
	}

	return prices, failed
}

// applyPrices writes fresh end prices and percent changes onto the
// bracket's entries, backfilling missing start prices.
func (s *Service) applyPrices(b *contracts.Bracket, prices map[string]float64) {
	for _, side := range [][]contracts.Entry{b.UserEntries, b.AIEntries} {
		for i := range side {
			e := &side[i]
			price, ok := prices[e.Symbol]
			if !ok {
				continue
			}
			if e.StartPrice == 0 {
				e.StartPrice = price
			}
			p := price
			e.EndPrice = &p
			change := (p - e.StartPrice) / e.StartPrice * 100
			e.PercentChange = &change
		}
	}
}

// buildUserEntries captures start prices for the user's picks. The
// bool reports whether any quote failed and left a degraded entry.
func (s *Service) buildUserEntries(ctx context.Context, params []EntryParams) ([]contracts.Entry, bool) {
	entries := make([]contracts.Entry, 0, len(params))
	degraded := false

	for i, p := range params {
		entry := contracts.Entry{
			Symbol:     strings.ToUpper(p.Symbol),
			AssetType:  "stock",
			Direction:  p.Direction,
			StartPrice: p.StartPrice,
			CapBucket:  contracts.CapMid,
			Order:      i + 1,
		}

		quote, err := s.market.GetQuote(ctx, entry.Symbol)
		s.usage.RecordCall("quote", err == nil)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", entry.Symbol).Warn("Creation-time quote failed")
			degraded = true
			entries = append(entries, entry)
			continue
		}

		entry.Name = quote.Name
		entry.AssetType = assetTypeOrStock(quote.AssetType)
		entry.StartPrice = quote.Price
		entry.CapBucket = contracts.CapBucket(quote.MarketCap)
		entry.Sector = quote.Sector
		entries = append(entries, entry)
	}

	return entries, degraded
}

// resolvePersonality returns the requested profile, or picks a
// contrasting opponent when none was requested.
func (s *Service) resolvePersonality(params CreateParams, userEntries []contracts.Entry) (*contracts.Profile, error) {
	if params.PersonalityID != "" {
		return s.registry.Get(params.PersonalityID)
	}

	difficulty := params.Difficulty
	if difficulty == "" {
		difficulty = contracts.DifficultyMedium
	}

	var sectors []string
	for _, e := range userEntries {
		if e.Sector != "" {
			sectors = append(sectors, e.Sector)
		}
	}

	return s.registry.SuitableOpponent(sectors, difficulty), nil
}

// validateParams rejects bad input before any external call
func validateParams(params CreateParams) error {
	if params.UserID == "" {
		return fmt.Errorf("user id required: %w", contracts.ErrInvalidInput)
	}
	if !contracts.ValidSize(params.Size) {
		return fmt.Errorf("size %d: %w", params.Size, contracts.ErrInvalidInput)
	}
	if !params.Timeframe.Valid() {
		return fmt.Errorf("timeframe %q: %w", params.Timeframe, contracts.ErrInvalidInput)
	}
	if len(params.UserEntries) != params.Size {
		return fmt.Errorf("expected %d entries, got %d: %w", params.Size, len(params.UserEntries), contracts.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(params.UserEntries))
	for _, e := range params.UserEntries {
		symbol := strings.ToUpper(e.Symbol)
		if symbol == "" {
			return fmt.Errorf("empty symbol: %w", contracts.ErrInvalidInput)
		}
		if seen[symbol] {
			return fmt.Errorf("duplicate symbol %s: %w", symbol, contracts.ErrInvalidInput)
		}
		seen[symbol] = true

		if e.Direction != contracts.Bullish && e.Direction != contracts.Bearish {
			return fmt.Errorf("direction %q for %s: %w", e.Direction, symbol, contracts.ErrInvalidInput)
		}
	}

	return nil
}

// bracketLock returns the per-bracket mutex, creating it on first use
func (s *Service) bracketLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func assetTypeOrStock(t string) string {
	if t == "" {
		return "stock"
	}
	return t
}
