package personality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelist/stockduel/internal/contracts"
)

func newTestRegistry() *Registry {
	return NewRegistry(rand.New(rand.NewSource(1)))
}

func TestGet(t *testing.T) {
	r := newTestRegistry()

	p, err := r.Get(contracts.ValueHunter)
	require.NoError(t, err)
	assert.Equal(t, contracts.ValueHunter, p.ID)
	assert.Equal(t, contracts.RiskLow, p.RiskTolerance)
}

func TestGetUnknown(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Get(contracts.PersonalityID("day_dreamer"))
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestAll(t *testing.T) {
	r := newTestRegistry()

	all := r.All()
	assert.Len(t, all, 6)

	seen := make(map[contracts.PersonalityID]bool)
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate profile %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.FavoredSectors)
	}
}

func TestRandom(t *testing.T) {
	r := newTestRegistry()

	seen := make(map[contracts.PersonalityID]bool)
	for i := 0; i < 200; i++ {
		seen[r.Random().ID] = true
	}

	// With 200 draws every profile should show up
	assert.Len(t, seen, 6)
}

func TestSuitableOpponentHardIsHighRisk(t *testing.T) {
	r := newTestRegistry()

	for i := 0; i < 100; i++ {
		p := r.SuitableOpponent(nil, contracts.DifficultyHard)
		require.Equal(t, contracts.RiskHigh, p.RiskTolerance,
			"hard difficulty must pick a high-risk opponent, got %s", p.ID)
	}
}

func TestSuitableOpponentEasyIsLowRisk(t *testing.T) {
	r := newTestRegistry()

	for i := 0; i < 100; i++ {
		p := r.SuitableOpponent([]string{}, contracts.DifficultyEasy)
		require.Equal(t, contracts.RiskLow, p.RiskTolerance)
	}
}

func TestSuitableOpponentUnknownDifficultyFallsBack(t *testing.T) {
	r := newTestRegistry()

	// "brutal" maps to medium risk; medium profiles exist, so picks
	// must come from them.
	for i := 0; i < 50; i++ {
		p := r.SuitableOpponent(nil, "brutal")
		require.Equal(t, contracts.RiskMedium, p.RiskTolerance)
	}
}

func TestSuitableOpponentContrastsSectors(t *testing.T) {
	r := newTestRegistry()

	// User heavily in tech: the three lowest-overlap profiles do not
	// favor Technology at all, so the pick must never be one of the
	// tech-favoring archetypes.
	userSectors := []string{"Technology"}

	for i := 0; i < 100; i++ {
		p := r.SuitableOpponent(userSectors, contracts.DifficultyMedium)
		assert.Equal(t, 0, p.SectorOverlap(userSectors),
			"low-overlap pick expected, got %s", p.ID)
	}
}
