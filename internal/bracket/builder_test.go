package bracket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelist/stockduel/internal/contracts"
)

func TestBuildMatchesRoundShape(t *testing.T) {
	for _, size := range contracts.ValidSizes {
		matches, err := BuildMatches(size)
		require.NoError(t, err, "size %d", size)

		counts := map[int]int{}
		for _, m := range matches {
			counts[m.Round]++
		}

		want := RoundCounts(size)
		require.Len(t, counts, len(want), "size %d rounds", size)
		for round, n := range want {
			assert.Equal(t, n, counts[round+1], "size %d round %d", size, round+1)
		}
	}
}

func TestBuildMatchesRoundOnePartition(t *testing.T) {
	for _, size := range contracts.ValidSizes {
		matches, err := BuildMatches(size)
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, m := range matches {
			if m.Round != 1 {
				continue
			}
			assert.Equal(t, m.UserOrders, m.AIOrders, "round 1 slots mirror each side")
			for _, order := range m.UserOrders {
				assert.False(t, seen[order], "size %d order %d appears twice", size, order)
				seen[order] = true
			}
		}

		// Every position plays round 1 except the byes
		assert.Len(t, seen, size-len(ByeOrders(size)), "size %d", size)
		for _, bye := range ByeOrders(size) {
			assert.False(t, seen[bye], "bye position %d should skip round 1", bye)
		}
	}
}

func TestBuildMatchesLaterRoundsStartEmpty(t *testing.T) {
	matches, err := BuildMatches(9)
	require.NoError(t, err)

	for _, m := range matches {
		if m.Round == 1 {
			continue
		}
		assert.Empty(t, m.UserOrders)
		assert.Empty(t, m.AIOrders)
		assert.False(t, m.Completed)
	}
}

func TestBuildMatchesRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, 1, 2, 4, 5, 7, 8, 10, -3} {
		_, err := BuildMatches(size)
		assert.True(t, errors.Is(err, contracts.ErrInvalidSize), "size %d", size)
	}
}

func TestByeOrders(t *testing.T) {
	assert.Nil(t, ByeOrders(3))
	assert.Nil(t, ByeOrders(6))
	assert.Equal(t, []int{9}, ByeOrders(9))
}
