package bracket

import (
	"fmt"

	"github.com/duelist/stockduel/internal/contracts"
)

// BuildMatches constructs the round/match skeleton for a bracket size.
//
// Size 3 plays one round of three single-entry matches. Sizes 6 and 9
// play pair matches (two order positions per side per match); the size
// 9 layout covers positions 1-8 in round 1 and gives position 9 on
// each side a bye into round 2. Later rounds are created with empty
// slots and filled by the scorer once the feeding round resolves.
func BuildMatches(size int) ([]contracts.Match, error) {
	switch size {
	case 3:
		return []contracts.Match{
			{Round: 1, Number: 1, UserOrders: []int{1}, AIOrders: []int{1}},
			{Round: 1, Number: 2, UserOrders: []int{2}, AIOrders: []int{2}},
			{Round: 1, Number: 3, UserOrders: []int{3}, AIOrders: []int{3}},
		}, nil

	case 6:
		return []contracts.Match{
			{Round: 1, Number: 1, UserOrders: []int{1, 2}, AIOrders: []int{1, 2}},
			{Round: 1, Number: 2, UserOrders: []int{3, 4}, AIOrders: []int{3, 4}},
			{Round: 1, Number: 3, UserOrders: []int{5, 6}, AIOrders: []int{5, 6}},
			{Round: 2, Number: 1, UserOrders: []int{}, AIOrders: []int{}},
		}, nil

	case 9:
		return []contracts.Match{
			{Round: 1, Number: 1, UserOrders: []int{1, 2}, AIOrders: []int{1, 2}},
			{Round: 1, Number: 2, UserOrders: []int{3, 4}, AIOrders: []int{3, 4}},
			{Round: 1, Number: 3, UserOrders: []int{5, 6}, AIOrders: []int{5, 6}},
			{Round: 1, Number: 4, UserOrders: []int{7, 8}, AIOrders: []int{7, 8}},
			{Round: 2, Number: 1, UserOrders: []int{}, AIOrders: []int{}},
			{Round: 2, Number: 2, UserOrders: []int{}, AIOrders: []int{}},
			{Round: 3, Number: 1, UserOrders: []int{}, AIOrders: []int{}},
		}, nil

	default:
		return nil, fmt.Errorf("size %d: %w", size, contracts.ErrInvalidSize)
	}
}

// ByeOrders returns the order positions that skip round 1 for a size
func ByeOrders(size int) []int {
	if size == 9 {
		return []int{9}
	}
	return nil
}

// RoundCounts returns the number of matches per round for a size
func RoundCounts(size int) []int {
	switch size {
	case 3:
		return []int{3}
	case 6:
		return []int{3, 1}
	case 9:
		return []int{4, 2, 1}
	default:
		return nil
	}
}
