package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// ErrDeckExhausted is returned when more cards are requested than remain
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a shuffled 52-card deck with a cursor marking how many cards have
// been dealt. Dealt cards never come back within a hand.
type Deck struct {
	cards [DeckSize]Card
	next  int
}

// NewDeck creates a new deck shuffled with the provided random source
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{}
	d.fill()
	d.shuffle(rng)
	return d
}

// NewStackedDeck returns a deck whose first cards are top, in order, followed
// by the remaining cards in canonical order. Used for deterministic deals.
func NewStackedDeck(top []Card) (*Deck, error) {
	d := &Deck{}
	seen := make(map[Card]bool, DeckSize)
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		d.cards[i] = c
		i++
	}
	for _, c := range canonicalOrder() {
		if !seen[c] {
			d.cards[i] = c
			i++
		}
	}
	return d, nil
}

func canonicalOrder() []Card {
	cards := make([]Card, 0, DeckSize)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

func (d *Deck) fill() {
	copy(d.cards[:], canonicalOrder())
	d.next = 0
}

// shuffle shuffles the deck using Fisher-Yates
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the next n cards. The deck is left untouched when
// fewer than n cards remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot deal %d cards", n)
	}
	if d.next+n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, d.Remaining())
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Dealt returns a copy of every card dealt so far, in deal order
func (d *Deck) Dealt() []Card {
	out := make([]Card, d.next)
	copy(out, d.cards[:d.next])
	return out
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	c := *d
	return &c
}
