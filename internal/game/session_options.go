package game

import "github.com/lox/drawpoker/poker"

// SessionOption configures a Session during creation.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	deck   *poker.Deck // overrides the seeded shuffle when set
	stacks *[NumSeats]int
}

// WithDeck deals from the given deck instead of a seeded shuffle
func WithDeck(deck *poker.Deck) SessionOption {
	return func(c *sessionConfig) {
		c.deck = deck
	}
}

// WithStacks sets every seat's starting chips, human first
func WithStacks(stacks [NumSeats]int) SessionOption {
	return func(c *sessionConfig) {
		c.stacks = &stacks
	}
}
