package contracts

// PersonalityID identifies an AI opponent archetype. Closed set; the
// registry rejects anything outside it.
type PersonalityID string

const (
	ValueHunter       PersonalityID = "value_hunter"
	MomentumTrader    PersonalityID = "momentum_trader"
	TrendFollower     PersonalityID = "trend_follower"
	ContraThinker     PersonalityID = "contra_thinker"
	GrowthSeeker      PersonalityID = "growth_seeker"
	DividendCollector PersonalityID = "dividend_collector"
)

// RiskTolerance levels for a personality
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Time horizons for a personality
const (
	HorizonShort  = "short"
	HorizonMedium = "medium"
	HorizonLong   = "long"
)

// Difficulty levels requested by the caller when asking for an opponent
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Profile is an immutable AI opponent catalog entry. Created once at
// process start and shared read-only; brackets reference it by id.
type Profile struct {
	ID             PersonalityID `json:"id"`
	Name           string        `json:"name"`
	Style          string        `json:"style"`
	RiskTolerance  string        `json:"risk_tolerance"` // low, medium, high
	TimeHorizon    string        `json:"time_horizon"`   // short, medium, long
	FavoredSectors []string      `json:"favored_sectors"`
}

// FavorsSector reports whether the profile favors the given sector
func (p *Profile) FavorsSector(sector string) bool {
	for _, s := range p.FavoredSectors {
		if s == sector {
			return true
		}
	}
	return false
}

// SectorOverlap counts how many of the given sectors the profile favors
func (p *Profile) SectorOverlap(sectors []string) int {
	overlap := 0
	for _, s := range sectors {
		if p.FavorsSector(s) {
			overlap++
		}
	}
	return overlap
}
