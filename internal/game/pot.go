package game

import "sort"

// Pot is a main or side pot and the seats that can win it
type Pot struct {
	Amount   int
	Eligible []int
}

// buildPots layers the hand's contributions into pots. A new layer starts at
// every distinct contribution level of a seat still in the hand, so an all-in
// seat only competes for chips it matched. Folded seats' chips stay in the
// layers they reached. The pots always sum to the table's pot.
func buildPots(t *Table) []Pot {
	levelSet := make(map[int]bool)
	for i := range t.Seats {
		s := &t.Seats[i]
		if s.InHand() && s.Contributed > 0 {
			levelSet[s.Contributed] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	var pots []Pot
	previous := 0
	for _, level := range levels {
		pot := Pot{}
		for i := range t.Seats {
			s := &t.Seats[i]
			pot.Amount += min(s.Contributed, level) - min(s.Contributed, previous)
			if s.InHand() && s.Contributed >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		previous = level
		pots = append(pots, pot)
	}

	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	if rest := t.Pot - total; rest > 0 {
		if len(pots) == 0 {
			pots = append(pots, Pot{Eligible: t.inHand()})
		}
		pots[len(pots)-1].Amount += rest
	}
	return pots
}

// splitPot divides amount evenly among winners. The odd chips go to the human
// seat when it is among the winners, otherwise to the earliest winning seat.
func splitPot(amount int, winners []int) map[int]int {
	shares := make(map[int]int, len(winners))
	if len(winners) == 0 {
		return shares
	}
	share := amount / len(winners)
	for _, w := range winners {
		shares[w] = share
	}
	remainder := amount - share*len(winners)
	if remainder > 0 {
		recipient := winners[0]
		for _, w := range winners {
			if w == HumanSeat {
				recipient = w
				break
			}
		}
		shares[recipient] += remainder
	}
	return shares
}
