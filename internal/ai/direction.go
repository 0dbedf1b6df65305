package ai

import (
	"math"
	"math/rand"

	"github.com/duelist/stockduel/internal/contracts"
)

// Probability clamp bounds: no call is ever a certainty.
const (
	minBullishProb = 0.10
	maxBullishProb = 0.90
)

// DirectionAssigner computes a bullish or bearish call for one
// candidate under one personality and timeframe. The draw is random;
// only the probability is deterministic.
type DirectionAssigner struct {
	rng *rand.Rand
}

// NewDirectionAssigner creates an assigner around the given rng
func NewDirectionAssigner(rng *rand.Rand) *DirectionAssigner {
	return &DirectionAssigner{rng: rng}
}

// Assign draws a direction for the candidate
func (d *DirectionAssigner) Assign(c contracts.CandidateStock, id contracts.PersonalityID, tf contracts.Timeframe) contracts.Direction {
	p := d.BullishProbability(c, id, tf)
	if d.rng.Float64() < p {
		return contracts.Bullish
	}
	return contracts.Bearish
}

// BullishProbability returns the clamped probability of a bullish call.
// Exposed separately so tests can assert on the model without draws.
func (d *DirectionAssigner) BullishProbability(c contracts.CandidateStock, id contracts.PersonalityID, tf contracts.Timeframe) float64 {
	p := 0.5

	switch id {
	case contracts.ValueHunter:
		// Cheap names with a payout look bullish; a recent run-up
		// means the value is already gone
		p += (20 - peOrDefault(c)) * 0.01
		p += c.DividendYield * 0.1
		p -= math.Max(0, c.ChangePercent) * 0.01

	case contracts.MomentumTrader:
		p += c.ChangePercent * 0.03
		if tf == contracts.TimeframeDaily {
			p += 0.1
		}

	case contracts.TrendFollower:
		// Goes with the move, a little less aggressively than the
		// momentum trader
		p += c.ChangePercent * 0.02
		if tf != contracts.TimeframeDaily {
			p += 0.05
		}

	case contracts.ContraThinker:
		p -= c.ChangePercent * 0.02
		if c.ChangePercent < -10 {
			p += 0.2
		}
		if c.ChangePercent > 10 {
			p -= 0.2
		}

	case contracts.GrowthSeeker:
		p += 0.2
		if c.Sector == "Technology" {
			p += 0.1
		}
		if c.PERatio > 30 {
			p += 0.1
		}
		if tf == contracts.TimeframeMonthly {
			p += 0.1
		}

	case contracts.DividendCollector:
		p += c.DividendYield * 0.15
		p -= math.Abs(c.ChangePercent) * 0.01
		if c.Sector == "Utilities" || c.Sector == "Consumer Staples" {
			p += 0.1
		}
	}

	return clamp(p, minBullishProb, maxBullishProb)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
