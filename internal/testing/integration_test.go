// Package testing runs the game API end to end: a real server on a local
// port, driven over HTTP and watched over websockets.
package testing

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/server"
)

// callingStationConfig makes opponents call everything so hands always reach
// the draw
func callingStationConfig() *server.Config {
	cfg := server.DefaultConfig()
	raise, cheap := 2.0, 1.0
	cfg.Policy.RaiseThreshold = &raise
	cfg.Policy.CheapCallRatio = &cheap
	return cfg
}

func totalChips(state game.GameState) int {
	total := state.Pot + state.PlayerChips
	for _, op := range state.Opponents {
		total += op.Chips
	}
	return total
}

func TestFullHandOverHTTPAndWebSocket(t *testing.T) {
	ts := StartTestServer(t, callingStationConfig(), server.WithSeeds(func() int64 { return 42 }))
	client := ts.Client(t)

	initial := client.Create()
	require.Equal(t, game.PhaseBetting, initial.Phase)
	total := totalChips(initial)

	watcher, err := client.Watch(initial.GameID)
	require.NoError(t, err)
	assert.Equal(t, initial.GameID, watcher.Next().GameID)

	state, err := client.Bet(initial.GameID, "call", 0)
	require.NoError(t, err)
	require.Equal(t, game.PhaseDrawing, state.Phase)
	assert.Equal(t, 40, state.Pot)
	assert.Equal(t, game.PhaseDrawing, watcher.Next().Phase)

	state, err = client.Draw(initial.GameID, []int{0, 4})
	require.NoError(t, err)
	assert.Equal(t, game.PhaseBetting, state.Phase)
	assert.Equal(t, 2, state.BettingRound)
	assert.True(t, state.PlayerHand[0].Selected)
	assert.True(t, state.PlayerHand[4].Selected)
	assert.Equal(t, total, totalChips(state))

	final := client.PlayOut(initial.GameID)
	assert.Equal(t, 0, final.Pot)
	assert.Equal(t, total, totalChips(final))
	require.NotNil(t, final.Winner)
	for _, op := range final.Opponents {
		assert.Len(t, op.Hand, 5, "hands are revealed once the hand is over")
	}

	streamed := watcher.WaitForPhase(game.PhaseFinished)
	assert.Equal(t, final.Winner, streamed.Winner)

	lines, err := client.Log(initial.GameID)
	require.NoError(t, err)
	assert.Contains(t, lines, "player calls 10")
	assert.Contains(t, lines, "first betting round")
	assert.Contains(t, lines, "player draws 2")

	_, err = client.Bet(initial.GameID, "call", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestConcurrentGamesAreIndependent(t *testing.T) {
	ts := StartTestServer(t, server.DefaultConfig())
	client := ts.Client(t)

	const games = 16
	var g errgroup.Group
	ids := make([]string, games)
	for i := range games {
		g.Go(func() error {
			state, err := client.CreateGame()
			if err != nil {
				return err
			}
			ids[i] = state.GameID
			total := totalChips(state)

			for step := 0; state.Phase != game.PhaseFinished; step++ {
				if step > 50 {
					return fmt.Errorf("game %s did not finish", state.GameID)
				}
				switch state.Phase {
				case game.PhaseBetting:
					if state.CanCall {
						state, err = client.Bet(state.GameID, "call", 0)
					} else {
						state, err = client.Bet(state.GameID, "fold", 0)
					}
				case game.PhaseDrawing:
					state, err = client.Draw(state.GameID, []int{1, 2})
				}
				if err != nil {
					return err
				}
				if got := totalChips(state); got != total {
					return fmt.Errorf("game %s: chips %d, want %d", state.GameID, got, total)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool, games)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate game id %s", id)
		seen[id] = true
	}
}

func TestConcurrentActionsOnOneGameAreSerialised(t *testing.T) {
	ts := StartTestServer(t, callingStationConfig())
	client := ts.Client(t)
	id := client.Create().GameID

	const requests = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
		other    []error
	)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Bet(id, "call", 0)

			mu.Lock()
			defer mu.Unlock()
			var apiErr *APIError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest:
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, ok, "exactly one call is applied")
	assert.Equal(t, requests-1, rejected)

	state, err := client.Get(id)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseDrawing, state.Phase)
	assert.Equal(t, 40, state.Pot)
}

func TestErrorsOverTheWire(t *testing.T) {
	ts := StartTestServer(t, server.DefaultConfig())
	client := ts.Client(t)

	var apiErr *APIError

	_, err := client.Get(uuid.NewString())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = client.Get("not-a-game")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	id := client.Create().GameID
	_, err = client.Bet(id, "raise", 5)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "must exceed the current bet")

	_, err = client.Draw(id, []int{0})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = client.Watch(uuid.NewString())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
