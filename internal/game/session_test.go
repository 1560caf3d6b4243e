package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/poker"
)

var highCardHands = [NumSeats]string{
	"Ah Kd 9c 6s 3h",
	"Ac Jd 8h 5s 2c",
	"Kc Qd 7h 4s 2d",
	"Qc Td 8c 5d 3s",
}

func TestNewSessionDealsFiveCardsEach(t *testing.T) {
	s, err := NewSession("g1", 42, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, PhaseBetting, s.Phase)
	assert.Equal(t, FirstRound, s.Betting.Index)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, 1000, s.Seats[HumanSeat].Chips)
	assert.Equal(t, poker.DeckSize-NumSeats*poker.HandSize, s.Deck.Remaining())
	assert.True(t, s.HumanToAct())

	seen := make(map[poker.Card]bool)
	for i, seat := range s.Seats {
		assert.Equal(t, Active, seat.Status)
		if i != HumanSeat {
			assert.GreaterOrEqual(t, seat.Chips, 800)
			assert.LessOrEqual(t, seat.Chips, 1200)
		}
		for _, c := range seat.Hand {
			assert.False(t, seen[c], "card %s dealt twice", c)
			seen[c] = true
		}
	}
	assert.Equal(t, "player", s.Seats[0].Name)
	assert.Equal(t, "Computer 3", s.Seats[3].Name)
}

func TestNewSessionIsDeterministic(t *testing.T) {
	a, err := NewSession("a", 7, DefaultRules())
	require.NoError(t, err)
	b, err := NewSession("b", 7, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, a.Seats, b.Seats)

	require.NoError(t, a.Bet(Call, 0))
	require.NoError(t, b.Bet(Call, 0))
	assert.Equal(t, a.Table, b.Table)
	assert.Equal(t, a.Phase, b.Phase)
}

func TestNewSessionRejectsInvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.OpponentChipsMax = 10
	_, err := NewSession("bad", 1, rules)
	require.Error(t, err)
}

func TestEveryoneCallsIntoDraw(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())

	require.NoError(t, s.Bet(Call, 0))

	assert.Equal(t, PhaseDrawing, s.Phase)
	assert.Equal(t, 40, s.Pot)
	assert.Equal(t, 990, s.Seats[HumanSeat].Chips)
	for _, seat := range s.Seats {
		assert.Equal(t, Active, seat.Status)
	}

	state := s.State()
	assert.Equal(t, 0, state.BettingRound)
	assert.False(t, state.CanCall)
	assert.Nil(t, state.Winner)

	require.NoError(t, s.Draw([]int{0, 1}))
	assert.True(t, s.Seats[HumanSeat].Drawn[0])
	assert.True(t, s.Seats[HumanSeat].Drawn[1])
	assert.False(t, s.Seats[HumanSeat].Drawn[2])
	assert.Equal(t, PhaseBetting, s.Phase)
	assert.Equal(t, SecondRound, s.Betting.Index)

	playOut(t, s)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, 4000, s.TotalChips())
	assert.NotEmpty(t, s.Winners)
}

func TestSecondRoundOpensWithNothingToCall(t *testing.T) {
	s := stackedSession(t, highCardHands, "Jh 9d 7c 4h 2h Th 8d 6c 4d 3c 9h 7d 5c 3d 2s", evenStacks())
	require.NoError(t, s.Bet(Call, 0))
	require.NoError(t, s.Draw(nil))

	state := s.State()
	assert.Equal(t, 2, state.BettingRound)
	assert.Equal(t, 0, state.CurrentBet)
	assert.Equal(t, 0, state.ToCall)
	assert.True(t, state.CanCall)
	assert.Equal(t, 40, state.Pot)

	require.NoError(t, s.Bet(Call, 0))

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, []int{HumanSeat}, s.Winners)
	assert.Equal(t, 40, s.Payouts[HumanSeat])
	assert.Equal(t, [NumSeats]int{1030, 990, 990, 990}, [NumSeats]int{
		s.Seats[0].Chips, s.Seats[1].Chips, s.Seats[2].Chips, s.Seats[3].Chips,
	})

	var checks []string
	for _, e := range s.Log {
		if e.Type == EventAction && e.Amount == 0 {
			checks = append(checks, e.String())
		}
	}
	assert.Equal(t, []string{"player checks", "Computer 1 checks", "Computer 2 checks", "Computer 3 checks"}, checks)
}

func TestSecondRoundBetIsConfigurable(t *testing.T) {
	cards := poker.MustParseCards(strings.Join(highCardHands[:], " "))
	deck, err := poker.NewStackedDeck(cards)
	require.NoError(t, err)
	rules := testRules()
	rules.SecondRoundBet = 20

	s, err := NewSession("test", 1, rules, WithDeck(deck), WithStacks(evenStacks()))
	require.NoError(t, err)
	require.NoError(t, s.Bet(Call, 0))
	require.NoError(t, s.Draw(nil))

	assert.Equal(t, 20, s.State().ToCall)
}

func TestRaiseBeyondOpponentStack(t *testing.T) {
	hands := [NumSeats]string{
		"Ah Jd 9c 6s 3h",
		"Ac Td 8h 4s 2c",
		"Kc Kd 7h 7s 2d",
		"Qc Qd 5h 5c 3s",
	}
	s := stackedSession(t, hands, "", [NumSeats]int{1000, 100, 1000, 1000})

	require.NoError(t, s.Bet(Raise, 200))

	assert.Equal(t, PhaseDrawing, s.Phase)
	assert.Equal(t, Folded, s.Seats[1].Status)
	assert.Equal(t, 100, s.Seats[1].Chips)
	assert.Equal(t, 600, s.Pot)

	active := 0
	for _, seat := range s.Seats {
		if seat.Status == Active {
			active++
		}
	}
	assert.Equal(t, 3, active)
	assert.Equal(t, 3100, s.TotalChips())
}

func TestEveryoneFoldsToRaise(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())

	require.NoError(t, s.Bet(Raise, 500))

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, []int{HumanSeat}, s.Winners)
	assert.Equal(t, 1000, s.Seats[HumanSeat].Chips)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, 500, s.Payouts[HumanSeat])

	state := s.State()
	require.NotNil(t, state.Winner)
	assert.Equal(t, "player", *state.Winner)
	assert.Nil(t, state.WinningHand)
	for _, op := range state.Opponents {
		assert.Equal(t, Folded, op.Status)
	}
}

func TestTiedShowdownSplitsPot(t *testing.T) {
	hands := [NumSeats]string{
		"Ah Ad Kc Kh 9s",
		"As Ac Kd Ks 9c",
		"Qc Jd 8h 5s 2c",
		"Qd Tc 7h 4s 3c",
	}
	s := stackedSession(t, hands, "9d", evenStacks())

	require.NoError(t, s.Bet(Raise, 100))
	assert.Equal(t, PhaseDrawing, s.Phase)
	assert.Equal(t, Folded, s.Seats[2].Status)
	assert.Equal(t, Folded, s.Seats[3].Status)

	require.NoError(t, s.Draw(nil))
	assert.Equal(t, poker.MustParseCards("9d")[0], s.Seats[1].Hand[4])
	assert.True(t, s.Seats[1].Drawn[4])

	require.NoError(t, s.Bet(Call, 0))

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, []int{0, 1}, s.Winners)
	assert.Equal(t, 100, s.Payouts[0])
	assert.Equal(t, 100, s.Payouts[1])
	assert.Equal(t, 1000, s.Seats[0].Chips)
	assert.Equal(t, 1000, s.Seats[1].Chips)
	assert.Equal(t, 0, s.Pot)

	state := s.State()
	require.NotNil(t, state.Winner)
	assert.Equal(t, "player, Computer 1", *state.Winner)
	assert.Equal(t, []string{"player", "Computer 1"}, state.Winners)
	require.NotNil(t, state.WinningHand)
	assert.Equal(t, "Two Pair, Aces and Kings", *state.WinningHand)
	require.Len(t, state.Opponents[0].Hand, poker.HandSize)
	assert.True(t, state.Opponents[0].Hand[4].Selected)
}

func TestHumanFoldPlaysOutHand(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())

	require.NoError(t, s.Bet(Fold, 0))

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, Folded, s.Seats[HumanSeat].Status)
	assert.NotContains(t, s.Winners, HumanSeat)
	assert.Equal(t, 1000, s.Seats[HumanSeat].Chips)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, 4000, s.TotalChips())
}

func TestInvalidBetsLeaveSessionUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		amount int
		err    error
	}{
		{"raise not above bet", Raise, 10, ErrInvalidAction},
		{"raise zero", Raise, 0, ErrInvalidAction},
		{"raise negative", Raise, -50, ErrInvalidAction},
		{"raise beyond stack", Raise, 5000, ErrInsufficientChips},
		{"unknown action", Action(9), 0, ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stackedSession(t, highCardHands, "", evenStacks())
			before := s.Clone()

			err := s.Bet(tt.action, tt.amount)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, before, s)
		})
	}
}

func TestCallWithoutChipsIsRejected(t *testing.T) {
	s := stackedSession(t, highCardHands, "", [NumSeats]int{5, 1000, 1000, 1000})
	before := s.Clone()

	require.ErrorIs(t, s.Bet(Call, 0), ErrInsufficientChips)
	assert.Equal(t, before, s)

	state := s.State()
	assert.False(t, state.CanCall)
	assert.False(t, state.CanRaise)
	assert.True(t, state.CanFold)
}

func TestInvalidDiscardsLeaveHandUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		discards []int
	}{
		{"out of range", []int{5}},
		{"negative", []int{-1}},
		{"duplicate", []int{1, 1}},
		{"too many", []int{0, 1, 2, 3, 4, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stackedSession(t, highCardHands, "", evenStacks())
			require.NoError(t, s.Bet(Call, 0))
			before := s.Clone()

			require.ErrorIs(t, s.Draw(tt.discards), ErrInvalidIndices)
			assert.Equal(t, before, s)
		})
	}
}

func TestActionsOutOfPhase(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())
	require.ErrorIs(t, s.Draw([]int{0}), ErrInvalidPhase)

	require.NoError(t, s.Bet(Call, 0))
	require.Equal(t, PhaseDrawing, s.Phase)
	require.ErrorIs(t, s.Bet(Call, 0), ErrInvalidPhase)

	playOut(t, s)
	require.ErrorIs(t, s.Bet(Call, 0), ErrInvalidPhase)
	require.ErrorIs(t, s.Draw(nil), ErrInvalidPhase)
}

func TestDrawAllFive(t *testing.T) {
	s := stackedSession(t, highCardHands, "2h 3d 4c 6h 7d", evenStacks())
	require.NoError(t, s.Bet(Call, 0))

	require.NoError(t, s.Draw([]int{4, 3, 2, 1, 0}))
	assert.Equal(t, poker.MustParseHand("2h 3d 4c 6h 7d"), s.Seats[HumanSeat].Hand)
	assert.Equal(t, [poker.HandSize]bool{true, true, true, true, true}, s.Seats[HumanSeat].Drawn)
}

func TestStateHidesOpponentCardsUntilShowdown(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())

	state := s.State()
	assert.Equal(t, 1, state.BettingRound)
	assert.Equal(t, 10, state.CurrentBet)
	assert.Equal(t, 10, state.ToCall)
	assert.True(t, state.CanCall)
	assert.True(t, state.CanRaise)
	assert.True(t, state.CanFold)
	require.Len(t, state.Opponents, NumSeats-1)
	for _, op := range state.Opponents {
		assert.Nil(t, op.Hand)
		assert.Equal(t, poker.HandSize, op.CardCount)
	}
	assert.Len(t, state.PlayerHand, poker.HandSize)
	assert.Equal(t, "test", state.GameID)

	playOut(t, s)
	for _, op := range s.State().Opponents {
		assert.Len(t, op.Hand, poker.HandSize)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := stackedSession(t, highCardHands, "", evenStacks())
	c := s.Clone()

	require.NoError(t, c.Bet(Call, 0))
	assert.Equal(t, PhaseBetting, s.Phase)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, []int{0, 1, 2, 3}, s.Betting.ToAct)
	assert.Equal(t, poker.DeckSize-20, s.Deck.Remaining())
	assert.Less(t, len(s.Log), len(c.Log))
}

// TestRandomHandsConserveChipsAndCards plays many seeded hands with a random
// human and checks that chips are conserved and no card is seen twice.
func TestRandomHandsConserveChipsAndCards(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		s, err := NewSession("sim", seed, DefaultRules())
		require.NoError(t, err)
		total := s.TotalChips()
		rng := randutil.Derive(seed, 99)

		seen := make(map[poker.Card]bool)
		for _, seat := range s.Seats {
			for _, c := range seat.Hand {
				seen[c] = true
			}
		}

		for steps := 0; s.Phase != PhaseFinished; steps++ {
			require.Less(t, steps, 50, "seed %d did not finish", seed)
			switch s.Phase {
			case PhaseBetting:
				state := s.State()
				switch n := rng.IntN(10); {
				case n == 0:
					require.NoError(t, s.Bet(Fold, 0))
				case n < 3 && state.CanRaise:
					raise := state.CurrentBet + 1 + rng.IntN(state.PlayerChips-state.ToCall)
					require.NoError(t, s.Bet(Raise, raise), "seed %d", seed)
				case state.CanCall:
					require.NoError(t, s.Bet(Call, 0))
				default:
					require.NoError(t, s.Bet(Fold, 0))
				}
			case PhaseDrawing:
				before := s.Seats
				var discards []int
				for i := 0; i < poker.HandSize; i++ {
					if rng.IntN(2) == 0 {
						discards = append(discards, i)
					}
				}
				require.NoError(t, s.Draw(discards))
				for i, seat := range s.Seats {
					for j, c := range seat.Hand {
						if c != before[i].Hand[j] {
							require.False(t, seen[c], "seed %d: card %s seen twice", seed, c)
							seen[c] = true
						}
					}
				}
			}
			require.Equal(t, total, s.TotalChips(), "seed %d", seed)
		}

		assert.Equal(t, 0, s.Pot, "seed %d", seed)
		assert.NotEmpty(t, s.Winners, "seed %d", seed)
		payouts := 0
		for _, p := range s.Payouts {
			payouts += p
		}
		contributed := 0
		for _, seat := range s.Seats {
			contributed += seat.Contributed
		}
		assert.Equal(t, contributed, payouts, "seed %d", seed)
	}
}
