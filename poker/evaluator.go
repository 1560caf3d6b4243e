package poker

import (
	"fmt"
	"sort"
)

// HandSize is the number of cards in a five-card draw hand
const HandSize = 5

// Category enumerates hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of distinct hand categories
const NumCategories = int(StraightFlush) + 1

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandValue is the evaluated strength of a five-card hand. Two values compare
// by category first and then element-wise by Tiebreak.
type HandValue struct {
	Category Category
	Tiebreak []Rank
}

func validHand(hand [HandSize]Card) bool {
	for _, c := range hand {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// rankGroup is a run of same-ranked cards within a hand
type rankGroup struct {
	rank  Rank
	count int
}

// groupRanks returns the hand's ranks grouped and ordered by count, then rank,
// both descending.
func groupRanks(hand [HandSize]Card) []rankGroup {
	var counts [Ace + 1]int
	for _, c := range hand {
		counts[c.Rank]++
	}
	groups := make([]rankGroup, 0, HandSize)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: counts[r]})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})
	return groups
}

// straightHigh returns the high card of a straight made by the five distinct
// ranks in groups, or 0 when there is none. The wheel (A-2-3-4-5) is Five high.
func straightHigh(groups []rankGroup) Rank {
	if len(groups) != HandSize {
		return 0
	}
	// groups are sorted by rank descending when all counts are one
	high, low := groups[0].rank, groups[HandSize-1].rank
	if high-low == 4 {
		return high
	}
	if high == Ace && groups[1].rank == Five && low == Two {
		return Five
	}
	return 0
}

// Evaluate ranks a five-card hand. It is pure and defined for every input: a
// hand holding an invalid card ranks as a high card below every real hand.
func Evaluate(hand [HandSize]Card) HandValue {
	if !validHand(hand) {
		return HandValue{Category: HighCard}
	}
	groups := groupRanks(hand)

	flush := true
	for _, c := range hand[1:] {
		if c.Suit != hand[0].Suit {
			flush = false
			break
		}
	}

	if high := straightHigh(groups); high != 0 {
		category := Straight
		if flush {
			category = StraightFlush
		}
		return HandValue{Category: category, Tiebreak: []Rank{high}}
	}

	tiebreak := make([]Rank, len(groups))
	for i, g := range groups {
		tiebreak[i] = g.rank
	}

	var category Category
	switch {
	case groups[0].count == 4:
		category = FourOfAKind
	case groups[0].count == 3 && groups[1].count == 2:
		category = FullHouse
	case flush:
		category = Flush
	case groups[0].count == 3:
		category = ThreeOfAKind
	case groups[0].count == 2 && groups[1].count == 2:
		category = TwoPair
	case groups[0].count == 2:
		category = OnePair
	default:
		category = HighCard
	}
	return HandValue{Category: category, Tiebreak: tiebreak}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie.
func Compare(a, b HandValue) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			if a.Tiebreak[i] > b.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a.Tiebreak) > len(b.Tiebreak):
		return 1
	case len(a.Tiebreak) < len(b.Tiebreak):
		return -1
	}
	return 0
}

// Strength normalises the category to [0,1]: 0 for high card, 1 for a
// straight flush.
func (v HandValue) Strength() float64 {
	return float64(v.Category) / float64(StraightFlush)
}

// Describe returns a human-readable description such as "Full House, Kings
// over Fives" or "Pair of Aces".
func (v HandValue) Describe() string {
	t := v.Tiebreak
	if len(t) == 0 {
		return v.Category.String()
	}
	switch v.Category {
	case StraightFlush:
		if t[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", t[0].Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", t[0].Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", t[0].Plural(), t[1].Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", t[0].Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", t[0].Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", t[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", t[0].Plural(), t[1].Plural())
	case OnePair:
		return fmt.Sprintf("Pair of %s", t[0].Plural())
	default:
		return fmt.Sprintf("High Card, %s", t[0].Name())
	}
}

// Grouped returns the indices of cards that belong to a rank group of two or
// more (pairs, trips, quads), in hand order. Invalid cards are never grouped.
func Grouped(hand [HandSize]Card) []int {
	var counts [Ace + 1]int
	for _, c := range hand {
		if c.Valid() {
			counts[c.Rank]++
		}
	}
	var idx []int
	for i, c := range hand {
		if c.Valid() && counts[c.Rank] >= 2 {
			idx = append(idx, i)
		}
	}
	return idx
}
