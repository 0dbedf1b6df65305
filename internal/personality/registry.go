package personality

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/duelist/stockduel/internal/contracts"
)

// Registry is the static catalog of AI opponent profiles. Built once at
// startup; profiles are never mutated afterwards.
type Registry struct {
	profiles map[contracts.PersonalityID]*contracts.Profile
	order    []contracts.PersonalityID
	rng      *rand.Rand
}

// NewRegistry creates the registry with the built-in catalog. A nil rng
// seeds one from the clock; tests inject a fixed seed.
func NewRegistry(rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Registry{
		profiles: make(map[contracts.PersonalityID]*contracts.Profile),
		rng:      rng,
	}

	for _, p := range catalog() {
		p := p
		r.profiles[p.ID] = &p
		r.order = append(r.order, p.ID)
	}

	return r
}

// catalog defines the closed set of opponent profiles
func catalog() []contracts.Profile {
	return []contracts.Profile{
		{
			ID:             contracts.ValueHunter,
			Name:           "The Value Hunter",
			Style:          "Buys quality companies trading below intrinsic value and waits",
			RiskTolerance:  contracts.RiskLow,
			TimeHorizon:    contracts.HorizonLong,
			FavoredSectors: []string{"Financials", "Industrials", "Energy"},
		},
		{
			ID:             contracts.MomentumTrader,
			Name:           "The Momentum Trader",
			Style:          "Chases strength and cuts losers fast",
			RiskTolerance:  contracts.RiskHigh,
			TimeHorizon:    contracts.HorizonShort,
			FavoredSectors: []string{"Technology", "Consumer Discretionary"},
		},
		{
			ID:             contracts.TrendFollower,
			Name:           "The Trend Follower",
			Style:          "Rides established trends until they break",
			RiskTolerance:  contracts.RiskMedium,
			TimeHorizon:    contracts.HorizonMedium,
			FavoredSectors: []string{"Technology", "Industrials", "Communication Services"},
		},
		{
			ID:             contracts.ContraThinker,
			Name:           "The Contrarian",
			Style:          "Fades crowded moves and buys panic",
			RiskTolerance:  contracts.RiskHigh,
			TimeHorizon:    contracts.HorizonMedium,
			FavoredSectors: []string{"Energy", "Materials", "Real Estate"},
		},
		{
			ID:             contracts.GrowthSeeker,
			Name:           "The Growth Seeker",
			Style:          "Pays up for revenue growth and big addressable markets",
			RiskTolerance:  contracts.RiskMedium,
			TimeHorizon:    contracts.HorizonLong,
			FavoredSectors: []string{"Technology", "Healthcare", "Communication Services"},
		},
		{
			ID:             contracts.DividendCollector,
			Name:           "The Dividend Collector",
			Style:          "Compounds steady payout streams from boring businesses",
			RiskTolerance:  contracts.RiskLow,
			TimeHorizon:    contracts.HorizonLong,
			FavoredSectors: []string{"Utilities", "Consumer Staples", "Financials"},
		},
	}
}

// Get returns the profile for an id
func (r *Registry) Get(id contracts.PersonalityID) (*contracts.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("personality %q: %w", id, contracts.ErrNotFound)
	}
	return p, nil
}

// All returns every profile in catalog order
func (r *Registry) All() []*contracts.Profile {
	out := make([]*contracts.Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Random returns a uniformly random profile
func (r *Registry) Random() *contracts.Profile {
	id := r.order[r.rng.Intn(len(r.order))]
	return r.profiles[id]
}

// SuitableOpponent picks a contrasting opponent for the user.
//
// With favored sectors present, profiles are ranked by ascending sector
// overlap and one of the 3 lowest-overlap profiles is chosen at random:
// fewer shared sectors makes a more contrasting opponent. Without
// sectors the pick is random among profiles whose risk tolerance maps
// to the requested difficulty, falling back to the full catalog when
// nothing matches.
func (r *Registry) SuitableOpponent(userFavoredSectors []string, difficulty string) *contracts.Profile {
	all := r.All()

	if len(userFavoredSectors) > 0 {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].SectorOverlap(userFavoredSectors) < all[j].SectorOverlap(userFavoredSectors)
		})

		n := 3
		if len(all) < n {
			n = len(all)
		}
		return all[r.rng.Intn(n)]
	}

	wantRisk := difficultyToRisk(difficulty)
	candidates := make([]*contracts.Profile, 0, len(all))
	for _, p := range all {
		if p.RiskTolerance == wantRisk {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}

	return candidates[r.rng.Intn(len(candidates))]
}

// difficultyToRisk maps requested difficulty to a risk tolerance
func difficultyToRisk(difficulty string) string {
	switch difficulty {
	case contracts.DifficultyEasy:
		return contracts.RiskLow
	case contracts.DifficultyHard:
		return contracts.RiskHigh
	default:
		return contracts.RiskMedium
	}
}
