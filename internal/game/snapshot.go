package game

import (
	"strings"

	"github.com/lox/drawpoker/poker"
)

// CardView is a card as shown to the client
type CardView struct {
	Suit     poker.Suit `json:"suit"`
	Rank     poker.Rank `json:"rank"`
	Selected bool       `json:"selected"`
}

// OpponentView is an opponent as shown to the client. Hand is only filled in
// once the hand has reached showdown.
type OpponentView struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	Chips     int        `json:"chips"`
	CardCount int        `json:"cardCount"`
	Hand      []CardView `json:"hand,omitempty"`
}

// GameState is the externally visible snapshot of a session
type GameState struct {
	GameID       string         `json:"gameId"`
	Phase        Phase          `json:"phase"`
	BettingRound int            `json:"bettingRound"`
	Pot          int            `json:"pot"`
	PlayerHand   []CardView     `json:"playerHand"`
	PlayerChips  int            `json:"playerChips"`
	PlayerStatus Status         `json:"playerStatus"`
	Opponents    []OpponentView `json:"opponents"`
	Winner       *string        `json:"winner"`
	Winners      []string       `json:"winners,omitempty"`
	WinningHand  *string        `json:"winningHand"`
	CanCall      bool           `json:"canCall"`
	CanRaise     bool           `json:"canRaise"`
	CanFold      bool           `json:"canFold"`
	CurrentBet   int            `json:"currentBet"`
	ToCall       int            `json:"toCall"`
}

func cardViews(hand [poker.HandSize]Card, drawn [poker.HandSize]bool) []CardView {
	views := make([]CardView, len(hand))
	for i, c := range hand {
		views[i] = CardView{Suit: c.Suit, Rank: c.Rank, Selected: drawn[i]}
	}
	return views
}

// HandsRevealed reports whether opponents' cards may be shown
func (s *Session) HandsRevealed() bool {
	return s.Phase == PhaseShowdown || s.Phase == PhaseFinished
}

// HumanToAct reports whether the session is waiting on a human bet
func (s *Session) HumanToAct() bool {
	if s.Phase != PhaseBetting || s.Betting == nil {
		return false
	}
	next, ok := s.Betting.Next()
	return ok && next == HumanSeat && s.Seats[HumanSeat].CanAct()
}

// State projects the session into a snapshot. It never mutates the session.
func (s *Session) State() GameState {
	human := &s.Seats[HumanSeat]
	state := GameState{
		GameID:       s.ID,
		Phase:        s.Phase,
		Pot:          s.Pot,
		PlayerHand:   cardViews(human.Hand, human.Drawn),
		PlayerChips:  human.Chips,
		PlayerStatus: human.Status,
		Opponents:    make([]OpponentView, 0, NumSeats-1),
	}

	// The last round's bet stays visible through the draw
	if s.Betting != nil {
		state.CurrentBet = s.Betting.CurrentBet
	}
	if s.Phase == PhaseBetting && s.Betting != nil {
		state.BettingRound = int(s.Betting.Index)
		state.ToCall = s.Betting.Owed(HumanSeat)
	}
	if s.HumanToAct() {
		state.CanFold = true
		state.CanCall = human.Chips >= state.ToCall
		state.CanRaise = human.Chips > state.ToCall
	}

	for i := 1; i < NumSeats; i++ {
		seat := &s.Seats[i]
		view := OpponentView{
			ID:        seat.ID,
			Name:      seat.Name,
			Status:    seat.Status,
			Chips:     seat.Chips,
			CardCount: poker.HandSize,
		}
		if s.HandsRevealed() {
			view.Hand = cardViews(seat.Hand, seat.Drawn)
		}
		state.Opponents = append(state.Opponents, view)
	}

	if len(s.Winners) > 0 {
		names := s.WinnerNames()
		winner := strings.Join(names, ", ")
		state.Winner = &winner
		state.Winners = names
	}
	if s.WinningHand != "" {
		hand := s.WinningHand
		state.WinningHand = &hand
	}
	return state
}
