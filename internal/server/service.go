package server

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/gameid"
	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/internal/store"
)

// maxCommitAttempts bounds how often an action is replayed after losing a
// compare-and-swap race.
const maxCommitAttempts = 8

// ErrInvalidID is returned for a game id that is not a well-formed UUID
var ErrInvalidID = errors.New("invalid game id")

// GameService owns every session. Actions run against a clone of the stored
// session and are committed with compare-and-swap, so concurrent requests on
// one game are serialised and requests on different games never interact.
type GameService struct {
	store  *store.Memory[*game.Session]
	rules  game.Rules
	ids    *gameid.Generator
	seeds  func() int64
	hub    *Hub
	logger *log.Logger
}

// ServiceOption configures a GameService
type ServiceOption func(*GameService)

// WithSeeds overrides the per-game seed source
func WithSeeds(seeds func() int64) ServiceOption {
	return func(gs *GameService) {
		gs.seeds = seeds
	}
}

// WithIDGenerator overrides how game ids are minted
func WithIDGenerator(ids *gameid.Generator) ServiceOption {
	return func(gs *GameService) {
		gs.ids = ids
	}
}

// WithHub publishes every committed state to the hub's watchers
func WithHub(hub *Hub) ServiceOption {
	return func(gs *GameService) {
		gs.hub = hub
	}
}

// NewGameService creates a service storing sessions in st
func NewGameService(st *store.Memory[*game.Session], rules game.Rules, logger *log.Logger, opts ...ServiceOption) *GameService {
	gs := &GameService{
		store:  st,
		rules:  rules,
		ids:    gameid.NewGenerator(nil),
		seeds:  randutil.Seed,
		logger: logger.WithPrefix("games"),
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Create deals a new hand and stores it
func (gs *GameService) Create() (game.GameState, error) {
	id := gs.ids.Generate()
	seed := gs.seeds()

	session, err := game.NewSession(id, seed, gs.rules)
	if err != nil {
		return game.GameState{}, fmt.Errorf("creating game: %w", err)
	}
	entry, err := gs.store.Create(id, session)
	if err != nil {
		return game.GameState{}, fmt.Errorf("storing game: %w", err)
	}

	gs.logger.Info("Game created", "game", id, "seed", seed, "chips", session.Seats[game.HumanSeat].Chips)
	state := session.State()
	gs.publish(entry.Version, state)
	return state, nil
}

// Get returns the current state of a game
func (gs *GameService) Get(id string) (game.GameState, error) {
	current, err := gs.Current(id)
	return current.State, err
}

// Current returns the current state of a game with its store version
func (gs *GameService) Current(id string) (Update, error) {
	if err := gameid.Validate(id); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	entry, err := gs.store.Get(id)
	if err != nil {
		return Update{}, err
	}
	return Update{Version: entry.Version, State: entry.Value.State()}, nil
}

// Bet applies a human betting action. amount is the new bet level for a
// raise.
func (gs *GameService) Bet(id string, action game.Action, amount int) (game.GameState, error) {
	return gs.update(id, "bet", func(s *game.Session) error {
		return s.Bet(action, amount)
	}, "action", action, "amount", amount)
}

// Draw replaces the human's discarded cards
func (gs *GameService) Draw(id string, discards []int) (game.GameState, error) {
	return gs.update(id, "draw", func(s *game.Session) error {
		return s.Draw(discards)
	}, "discards", discards)
}

// update applies fn to a clone of the stored session and commits it. When
// another request commits first, fn is replayed against the newer session.
func (gs *GameService) update(id, op string, fn func(*game.Session) error, keyvals ...any) (game.GameState, error) {
	if err := gameid.Validate(id); err != nil {
		return game.GameState{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		entry, err := gs.store.Get(id)
		if err != nil {
			return game.GameState{}, err
		}

		session := entry.Value.Clone()
		if err := fn(session); err != nil {
			gs.logger.Debug("Action rejected", append([]any{"game", id, "op", op, "error", err}, keyvals...)...)
			return game.GameState{}, err
		}

		committed, err := gs.store.CompareAndSwap(id, entry.Version, session)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				gs.logger.Debug("Commit conflict, retrying", "game", id, "op", op, "attempt", attempt)
				continue
			}
			return game.GameState{}, err
		}

		state := session.State()
		gs.logger.Info("Game updated", append([]any{"game", id, "op", op, "phase", state.Phase, "pot", state.Pot}, keyvals...)...)
		if session.Phase == game.PhaseFinished && entry.Value.Phase != game.PhaseFinished {
			gs.logger.Info("Hand finished", "game", id, "winners", session.WinnerNames(), "hand", session.WinningHand)
		}
		gs.publish(committed.Version, state)
		return state, nil
	}
	return game.GameState{}, fmt.Errorf("%w: gave up after %d attempts", store.ErrConflict, maxCommitAttempts)
}

// Log returns the action log of a game for display
func (gs *GameService) Log(id string) ([]string, error) {
	if err := gameid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	entry, err := gs.store.Get(id)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(entry.Value.Log))
	for i, e := range entry.Value.Log {
		lines[i] = e.String()
	}
	return lines, nil
}

func (gs *GameService) publish(version uint64, state game.GameState) {
	if gs.hub != nil {
		gs.hub.Publish(version, state)
	}
}
