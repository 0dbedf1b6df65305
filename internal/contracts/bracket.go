package contracts

import "time"

// Timeframe determines how long a bracket runs
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// Valid reports whether the timeframe is one of the closed set
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	}
	return false
}

// Duration returns the wall-clock length of a bracket on this timeframe
func (t Timeframe) Duration() time.Duration {
	switch t {
	case TimeframeWeekly:
		return 7 * 24 * time.Hour
	case TimeframeMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Direction is a bullish or bearish call on an entry
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Status of a bracket. Transitions are one-directional:
// pending -> active -> completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Side identifies the owner of entries or a match win
type Side string

const (
	SideUser Side = "user"
	SideAI   Side = "ai"
	SideTie  Side = "tie"
)

// Market-cap buckets
const (
	CapLarge = "large"
	CapMid   = "mid"
	CapSmall = "small"
)

// CapBucket classifies a market cap in dollars
func CapBucket(marketCap float64) string {
	switch {
	case marketCap >= 10_000_000_000:
		return CapLarge
	case marketCap >= 2_000_000_000:
		return CapMid
	default:
		return CapSmall
	}
}

// Entry is one stock pick inside a bracket. StartPrice is captured at
// creation and never changes; EndPrice and PercentChange stay nil until
// a refresh resolves them.
type Entry struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	AssetType     string    `json:"asset_type"` // stock, etf
	Direction     Direction `json:"direction"`
	StartPrice    float64   `json:"start_price"`
	EndPrice      *float64  `json:"end_price,omitempty"`
	PercentChange *float64  `json:"percent_change,omitempty"`
	CapBucket     string    `json:"cap_bucket"`
	Sector        string    `json:"sector"`
	Order         int       `json:"order"` // 1-based position within its side
}

// AdjustedChange returns the direction-adjusted percent change: a
// bearish call profits from a drop, so its raw change is negated.
// The bool is false until the entry is resolved.
func (e *Entry) AdjustedChange() (float64, bool) {
	if e.PercentChange == nil {
		return 0, false
	}
	if e.Direction == Bearish {
		return -*e.PercentChange, true
	}
	return *e.PercentChange, true
}

// Match pairs user entries against AI entries by order position within
// a round. Later rounds are created with empty slots; the scorer fills
// them once the feeding round resolves.
type Match struct {
	Round      int      `json:"round"`
	Number     int      `json:"number"` // 1-based within the round
	UserOrders []int    `json:"user_orders"`
	AIOrders   []int    `json:"ai_orders"`
	Completed  bool     `json:"completed"`
	UserChange *float64 `json:"user_change,omitempty"`
	AIChange   *float64 `json:"ai_change,omitempty"`
	Winner     Side     `json:"winner,omitempty"`
}

// Bracket is the aggregate root of one user-vs-AI tournament. It
// exclusively owns its entries and matches; the personality catalog is
// referenced by id only.
type Bracket struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Name           string        `json:"name"`
	Timeframe      Timeframe     `json:"timeframe"`
	Size           int           `json:"size"` // 3, 6 or 9
	Status         Status        `json:"status"`
	PersonalityID  PersonalityID `json:"personality_id"`
	UserEntries    []Entry       `json:"user_entries"`
	AIEntries      []Entry       `json:"ai_entries"`
	Matches        []Match       `json:"matches"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	UserPoints     float64       `json:"user_points"`
	AIPoints       float64       `json:"ai_points"`
	Winner         Side          `json:"winner,omitempty"`
	PartialRefresh bool          `json:"partial_refresh,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// UserSymbols returns the set of symbols on the user side
func (b *Bracket) UserSymbols() map[string]bool {
	symbols := make(map[string]bool, len(b.UserEntries))
	for _, e := range b.UserEntries {
		symbols[e.Symbol] = true
	}
	return symbols
}

// EntryByOrder finds an entry by its order position on the given side
func (b *Bracket) EntryByOrder(side Side, order int) *Entry {
	entries := b.UserEntries
	if side == SideAI {
		entries = b.AIEntries
	}
	for i := range entries {
		if entries[i].Order == order {
			return &entries[i]
		}
	}
	return nil
}

// ValidSizes for a bracket. Non-power-of-two sizes produce byes.
var ValidSizes = []int{3, 6, 9}

// ValidSize reports whether n is a supported bracket size
func ValidSize(n int) bool {
	for _, s := range ValidSizes {
		if n == s {
			return true
		}
	}
	return false
}
