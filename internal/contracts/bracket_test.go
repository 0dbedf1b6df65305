package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframeDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, TimeframeDaily.Duration())
	assert.Equal(t, 7*24*time.Hour, TimeframeWeekly.Duration())
	assert.Equal(t, 30*24*time.Hour, TimeframeMonthly.Duration())
}

func TestTimeframeValid(t *testing.T) {
	assert.True(t, TimeframeDaily.Valid())
	assert.True(t, TimeframeWeekly.Valid())
	assert.True(t, TimeframeMonthly.Valid())
	assert.False(t, Timeframe("hourly").Valid())
	assert.False(t, Timeframe("").Valid())
}

func TestCapBucket(t *testing.T) {
	assert.Equal(t, CapLarge, CapBucket(250_000_000_000))
	assert.Equal(t, CapLarge, CapBucket(10_000_000_000))
	assert.Equal(t, CapMid, CapBucket(5_000_000_000))
	assert.Equal(t, CapSmall, CapBucket(500_000_000))
}

func TestAdjustedChange(t *testing.T) {
	change := -10.0

	bearish := Entry{Direction: Bearish, PercentChange: &change}
	got, ok := bearish.AdjustedChange()
	assert.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-9, "bearish call on a drop must score positive")

	bullish := Entry{Direction: Bullish, PercentChange: &change}
	got, ok = bullish.AdjustedChange()
	assert.True(t, ok)
	assert.InDelta(t, -10.0, got, 1e-9)

	unresolved := Entry{Direction: Bullish}
	_, ok = unresolved.AdjustedChange()
	assert.False(t, ok)
}

func TestSectorOverlap(t *testing.T) {
	p := Profile{FavoredSectors: []string{"Technology", "Healthcare"}}

	assert.Equal(t, 0, p.SectorOverlap(nil))
	assert.Equal(t, 1, p.SectorOverlap([]string{"Technology", "Energy"}))
	assert.Equal(t, 2, p.SectorOverlap([]string{"Technology", "Healthcare"}))
}

func TestValidSize(t *testing.T) {
	for _, n := range []int{3, 6, 9} {
		assert.True(t, ValidSize(n))
	}
	for _, n := range []int{0, 1, 2, 4, 5, 7, 8, 10, 16} {
		assert.False(t, ValidSize(n))
	}
}

func TestEntryByOrder(t *testing.T) {
	b := Bracket{
		UserEntries: []Entry{{Symbol: "AAPL", Order: 1}, {Symbol: "MSFT", Order: 2}},
		AIEntries:   []Entry{{Symbol: "NVDA", Order: 1}},
	}

	assert.Equal(t, "MSFT", b.EntryByOrder(SideUser, 2).Symbol)
	assert.Equal(t, "NVDA", b.EntryByOrder(SideAI, 1).Symbol)
	assert.Nil(t, b.EntryByOrder(SideAI, 2))
}
