package tui

import (
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/poker"
)

func TestMain(m *testing.M) {
	// Plain text rendering so views can be matched as strings
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

const stackedDeal = "Ah Kd 9c 6s 3h Ac Jd 8h 5s 2c Kc Qd 7h 4s 2d Qc Td 8c 5d 3s"

func testDealer(t *testing.T) Dealer {
	t.Helper()
	rules := game.DefaultRules()
	rules.Policy.Jitter = 0
	return func() (*game.Session, error) {
		deck, err := poker.NewStackedDeck(poker.MustParseCards(stackedDeal))
		require.NoError(t, err)
		return game.NewSession("tui", 1, rules,
			game.WithDeck(deck),
			game.WithStacks([game.NumSeats]int{1000, 1000, 1000, 1000}))
	}
}

func newTestModel(t *testing.T) *TUIModel {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
	m, err := NewTUIModel(testDealer(t), logger)
	require.NoError(t, err)
	return m
}

func logText(m *TUIModel) string {
	return strings.Join(m.gameLog, "\n")
}

func TestNewModelDealsFirstHand(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, 1, m.hands)
	assert.Equal(t, game.PhaseBetting, m.session.Phase)
	assert.Contains(t, logText(m), "Dealt to you")
	assert.Contains(t, logText(m), "FIRST BETTING ROUND")
}

func TestPlayHandThroughCommands(t *testing.T) {
	m := newTestModel(t)

	require.True(t, m.processAction("call"))
	assert.Equal(t, game.PhaseDrawing, m.session.Phase)
	assert.Contains(t, logText(m), "Computer 1 calls 10")

	require.True(t, m.processAction("draw 1 2"))
	assert.Equal(t, game.PhaseBetting, m.session.Phase)
	assert.Equal(t, game.SecondRound, m.session.Betting.Index)
	assert.True(t, m.session.Seats[game.HumanSeat].Drawn[0])
	assert.True(t, m.session.Seats[game.HumanSeat].Drawn[1])
	assert.Contains(t, logText(m), "You draw 2")

	for i := 0; i < 10 && m.session.Phase != game.PhaseFinished; i++ {
		require.True(t, m.processAction("call"))
	}
	assert.Equal(t, game.PhaseFinished, m.session.Phase)
	assert.Contains(t, logText(m), "Press Enter for the next hand")

	require.True(t, m.processAction(""))
	assert.Equal(t, 2, m.hands)
	assert.Equal(t, game.PhaseBetting, m.session.Phase)
}

func TestFoldUpdatesSessionResult(t *testing.T) {
	m := newTestModel(t)

	require.True(t, m.processAction("fold"))
	assert.Equal(t, game.PhaseFinished, m.session.Phase)
	assert.Equal(t, 0, m.net)
	assert.Contains(t, logText(m), "You broke even")

	// Further input does not count the hand twice
	require.True(t, m.processAction("bogus"))
	assert.Equal(t, 0, m.net)
}

func TestRaiseWinsWhenEveryoneFolds(t *testing.T) {
	m := newTestModel(t)

	require.True(t, m.processAction("raise 500"))
	assert.Equal(t, game.PhaseFinished, m.session.Phase)
	assert.Equal(t, 0, m.net)
	assert.Contains(t, logText(m), "player wins 500")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"raise", "specify the amount"},
		{"raise lots", "invalid amount"},
		{"raise 5", "must exceed the current bet"},
		{"raise 5000", "enough chips"},
		{"draw 1", "not possible right now"},
		{"dance", "unknown command"},
		{"new", "finish the current hand"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := newTestModel(t)
			require.True(t, m.processAction(tt.input))
			assert.Contains(t, m.gameLog[len(m.gameLog)-1], tt.want)
			assert.Equal(t, game.PhaseBetting, m.session.Phase)
		})
	}
}

func TestInvalidDrawPositions(t *testing.T) {
	m := newTestModel(t)
	require.True(t, m.processAction("call"))

	require.True(t, m.processAction("draw 6"))
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "between 1 and 5")
	assert.Equal(t, game.PhaseDrawing, m.session.Phase)

	require.True(t, m.processAction("draw 1 1"))
	assert.Equal(t, game.PhaseDrawing, m.session.Phase)
}

func TestQuitCommand(t *testing.T) {
	m := newTestModel(t)
	assert.False(t, m.processAction("quit"))
	assert.False(t, m.processAction("q"))
}

func TestParsePositions(t *testing.T) {
	tests := []struct {
		args []string
		want []int
	}{
		{nil, nil},
		{[]string{"1", "3", "5"}, []int{0, 2, 4}},
		{[]string{"1,2"}, []int{0, 1}},
		{[]string{"145"}, []int{0, 3, 4}},
	}
	for _, tt := range tests {
		got, err := parsePositions(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parsePositions([]string{"x"})
	assert.Error(t, err)
}

func TestUpdateAndView(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Pot: $0")
	assert.Contains(t, view, "Computer 1")
	assert.Contains(t, view, "Your hand")

	m.actionInput.SetValue("call")
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, game.PhaseDrawing, m.session.Phase)
	assert.Empty(t, m.actionInput.Value())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}
