package bracket

import (
	"fmt"

	"github.com/duelist/stockduel/internal/contracts"
)

// Score resolves a bracket whose entries all carry end prices. It is a
// pure function: the input is not mutated, the scored copy is returned.
//
// Per-entry percent change is (end - start) / start * 100; bearish
// calls are negated before summing, so the same adjusted number drives
// every per-match winner and both side totals. The bracket winner is
// the side-total comparison over all entries, bye included.
func Score(in *contracts.Bracket) (*contracts.Bracket, error) {
	b := clone(in)

	// Recompute percent change from prices; every entry must be resolved
	for _, side := range [][]contracts.Entry{b.UserEntries, b.AIEntries} {
		for i := range side {
			e := &side[i]
			if e.EndPrice == nil || e.StartPrice == 0 {
				return nil, fmt.Errorf("entry %s unresolved: %w", e.Symbol, contracts.ErrIncompleteData)
			}
			change := (*e.EndPrice - e.StartPrice) / e.StartPrice * 100
			e.PercentChange = &change
		}
	}

	resolveMatches(b)

	// Side totals over every entry; the authoritative winner rule
	var userTotal, aiTotal float64
	for i := range b.UserEntries {
		adj, _ := b.UserEntries[i].AdjustedChange()
		userTotal += adj
	}
	for i := range b.AIEntries {
		adj, _ := b.AIEntries[i].AdjustedChange()
		aiTotal += adj
	}

	b.UserPoints = userTotal
	b.AIPoints = aiTotal
	b.Winner = compareTotals(userTotal, aiTotal)
	b.Status = contracts.StatusCompleted

	return b, nil
}

// resolveMatches completes every match round by round, filling later
// rounds with the advancing order positions.
func resolveMatches(b *contracts.Bracket) {
	rounds := RoundCounts(b.Size)

	// Per-side survivors carried between rounds, as order positions
	userAdvance := []int{}
	aiAdvance := []int{}

	for round := 1; round <= len(rounds); round++ {
		// Fill this round's slots from the previous round's survivors
		if round > 1 {
			fillRound(b, round, userAdvance, aiAdvance)
		}

		userAdvance = userAdvance[:0]
		aiAdvance = aiAdvance[:0]

		for i := range b.Matches {
			m := &b.Matches[i]
			if m.Round != round {
				continue
			}

			userChange := sideChange(b, contracts.SideUser, m.UserOrders)
			aiChange := sideChange(b, contracts.SideAI, m.AIOrders)

			m.UserChange = &userChange
			m.AIChange = &aiChange
			m.Winner = compareTotals(userChange, aiChange)
			m.Completed = true

			// Each side advances its best entry from this match
			if best, ok := bestOrder(b, contracts.SideUser, m.UserOrders); ok {
				userAdvance = append(userAdvance, best)
			}
			if best, ok := bestOrder(b, contracts.SideAI, m.AIOrders); ok {
				aiAdvance = append(aiAdvance, best)
			}
		}

		// Byes join the survivors after round 1, carrying their own
		// change forward unchanged
		if round == 1 {
			for _, bye := range ByeOrders(b.Size) {
				userAdvance = append(userAdvance, bye)
				aiAdvance = append(aiAdvance, bye)
			}
		}
	}
}

// fillRound distributes survivor positions across the round's matches
func fillRound(b *contracts.Bracket, round int, userOrders, aiOrders []int) {
	matches := []*contracts.Match{}
	for i := range b.Matches {
		if b.Matches[i].Round == round {
			matches = append(matches, &b.Matches[i])
		}
	}
	if len(matches) == 0 {
		return
	}

	for i, order := range userOrders {
		m := matches[i*len(matches)/len(userOrders)]
		m.UserOrders = append(m.UserOrders, order)
	}
	for i, order := range aiOrders {
		m := matches[i*len(matches)/len(aiOrders)]
		m.AIOrders = append(m.AIOrders, order)
	}
}

// sideChange sums the adjusted changes of the side's entries in a match
func sideChange(b *contracts.Bracket, side contracts.Side, orders []int) float64 {
	var total float64
	for _, order := range orders {
		if e := b.EntryByOrder(side, order); e != nil {
			adj, _ := e.AdjustedChange()
			total += adj
		}
	}
	return total
}

// bestOrder returns the order position with the highest adjusted change
func bestOrder(b *contracts.Bracket, side contracts.Side, orders []int) (int, bool) {
	best := 0
	bestChange := 0.0
	found := false

	for _, order := range orders {
		e := b.EntryByOrder(side, order)
		if e == nil {
			continue
		}
		adj, _ := e.AdjustedChange()
		if !found || adj > bestChange {
			best = order
			bestChange = adj
			found = true
		}
	}
	return best, found
}

func compareTotals(user, ai float64) contracts.Side {
	switch {
	case user > ai:
		return contracts.SideUser
	case ai > user:
		return contracts.SideAI
	default:
		return contracts.SideTie
	}
}

// clone deep-copies a bracket so scoring stays pure
func clone(in *contracts.Bracket) *contracts.Bracket {
	b := *in
	b.UserEntries = cloneEntries(in.UserEntries)
	b.AIEntries = cloneEntries(in.AIEntries)
	b.Matches = make([]contracts.Match, len(in.Matches))
	for i, m := range in.Matches {
		m.UserOrders = append([]int{}, m.UserOrders...)
		m.AIOrders = append([]int{}, m.AIOrders...)
		if m.UserChange != nil {
			v := *m.UserChange
			m.UserChange = &v
		}
		if m.AIChange != nil {
			v := *m.AIChange
			m.AIChange = &v
		}
		b.Matches[i] = m
	}
	return &b
}

func cloneEntries(in []contracts.Entry) []contracts.Entry {
	out := make([]contracts.Entry, len(in))
	for i, e := range in {
		if e.EndPrice != nil {
			v := *e.EndPrice
			e.EndPrice = &v
		}
		if e.PercentChange != nil {
			v := *e.PercentChange
			e.PercentChange = &v
		}
		out[i] = e
	}
	return out
}
