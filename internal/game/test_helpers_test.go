package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/poker"
)

// testRules are the default rules with the random policy term switched off
func testRules() Rules {
	r := DefaultRules()
	r.Policy.Jitter = 0
	return r
}

// stackedSession deals the given hands in seat order, human first, followed
// by extra cards for the draw.
func stackedSession(t *testing.T, hands [NumSeats]string, extra string, stacks [NumSeats]int) *Session {
	t.Helper()
	cards := poker.MustParseCards(strings.Join(hands[:], " ") + " " + extra)
	deck, err := poker.NewStackedDeck(cards)
	require.NoError(t, err)

	s, err := NewSession("test", 1, testRules(), WithDeck(deck), WithStacks(stacks))
	require.NoError(t, err)
	return s
}

func evenStacks() [NumSeats]int {
	return [NumSeats]int{1000, 1000, 1000, 1000}
}

// playOut calls every remaining bet and stands pat on the draw
func playOut(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 100 && s.Phase != PhaseFinished; i++ {
		switch s.Phase {
		case PhaseBetting:
			require.NoError(t, s.Bet(Call, 0))
		case PhaseDrawing:
			require.NoError(t, s.Draw(nil))
		}
	}
	require.Equal(t, PhaseFinished, s.Phase)
}
