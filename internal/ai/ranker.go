package ai

import (
	"math/rand"
	"sort"

	"github.com/duelist/stockduel/internal/contracts"
)

// Default P/E used when a candidate has no reported ratio. High on
// purpose so the value sort pushes unknowns to the back.
const defaultPE = 100

// Ranker orders a candidate pool by a personality's preference
// function. Sorts are stable so equal candidates keep pool order.
type Ranker struct {
	rng *rand.Rand
}

// NewRanker creates a ranker. The rng only drives the shuffle used for
// unrecognized personalities.
func NewRanker(rng *rand.Rand) *Ranker {
	return &Ranker{rng: rng}
}

// Rank returns the candidates ordered by descending desirability for
// the personality. The input slice is not mutated.
func (r *Ranker) Rank(candidates []contracts.CandidateStock, id contracts.PersonalityID) []contracts.CandidateStock {
	ranked := make([]contracts.CandidateStock, len(candidates))
	copy(ranked, candidates)

	switch id {
	case contracts.ValueHunter:
		// Lower P/E is better
		sort.SliceStable(ranked, func(i, j int) bool {
			return peOrDefault(ranked[i]) < peOrDefault(ranked[j])
		})
	case contracts.MomentumTrader, contracts.TrendFollower:
		// Strongest recent move first; for the trend follower the
		// recent change doubles as a trend-strength proxy
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ChangePercent > ranked[j].ChangePercent
		})
	case contracts.ContraThinker:
		// Hardest-hit names first
		sort.SliceStable(ranked, func(i, j int) bool {
			return -ranked[i].ChangePercent > -ranked[j].ChangePercent
		})
	case contracts.GrowthSeeker:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Growth > ranked[j].Growth
		})
	case contracts.DividendCollector:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DividendYield > ranked[j].DividendYield
		})
	default:
		r.rng.Shuffle(len(ranked), func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	}

	return ranked
}

func peOrDefault(c contracts.CandidateStock) float64 {
	if c.PERatio <= 0 {
		return defaultPE
	}
	return c.PERatio
}
