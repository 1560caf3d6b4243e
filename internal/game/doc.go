// Package game implements the five-card draw rules engine.
//
// The main type is Session, which holds one complete hand played by a human
// seat against three computer opponents: the deal, the first betting round,
// the draw, the second betting round and the showdown.
//
// # Basic Usage
//
//	s, err := game.NewSession(id, seed, game.DefaultRules())
//	err = s.Bet(game.Call, 0)
//	err = s.Draw([]int{3, 4})
//	state := s.State()
//
// Opponent seats act automatically whenever they are next to act, so every
// call returns with the human to act or the hand finished.
//
// # Deterministic Testing
//
// The seed fully determines the deal, opponent stacks and policy jitter. A
// pre-arranged deck and stacks can be supplied with options:
//
//	deck, _ := poker.NewStackedDeck(cards)
//	s, _ := game.NewSession(id, 1, rules,
//	    game.WithDeck(deck),
//	    game.WithStacks([game.NumSeats]int{1000, 1000, 100, 1000}))
//
// # Concurrency
//
// A Session is not safe for concurrent use. Callers that share sessions must
// serialise actions per session, typically by mutating a Clone and committing
// it with compare-and-swap.
package game
