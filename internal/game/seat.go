package game

import "github.com/lox/drawpoker/poker"

const (
	// NumSeats is the human plus three opponents
	NumSeats = 4
	// HumanSeat is the seat index of the human player
	HumanSeat = 0
	// HumanName identifies the human seat in winners lists
	HumanName = "player"
)

// Status is a seat's participation in the current hand
type Status string

const (
	Active Status = "active"
	Folded Status = "folded"
	// AllIn seats have no chips left: still in the hand, never asked to act
	AllIn Status = "all_in"
)

// Seat is one participant in the hand
type Seat struct {
	ID     int
	Name   string
	Chips  int
	Status Status
	Hand   [poker.HandSize]Card
	// Drawn marks the hand positions replaced during the draw
	Drawn [poker.HandSize]bool
	// Contributed is the seat's total contribution to the pot this hand
	Contributed int
}

// Card is re-exported for brevity within the engine
type Card = poker.Card

// IsHuman reports whether this is the human seat
func (s *Seat) IsHuman() bool {
	return s.ID == HumanSeat
}

// InHand reports whether the seat can still win the pot
func (s *Seat) InHand() bool {
	return s.Status != Folded
}

// CanAct reports whether the seat can still be asked to bet
func (s *Seat) CanAct() bool {
	return s.Status == Active
}

// Value evaluates the seat's current hand
func (s *Seat) Value() poker.HandValue {
	return poker.Evaluate(s.Hand)
}

// Table is the chip-carrying part of a session: the seats and the pot.
type Table struct {
	Seats [NumSeats]Seat
	Pot   int
}

// contribute moves chips from a seat into the pot. It is the only path by
// which chips leave a stack during a hand.
func (t *Table) contribute(seat, amount int) {
	s := &t.Seats[seat]
	s.Chips -= amount
	s.Contributed += amount
	t.Pot += amount
	if s.Chips == 0 && s.Status == Active {
		s.Status = AllIn
	}
}

// award moves chips from the pot to a seat
func (t *Table) award(seat, amount int) {
	t.Seats[seat].Chips += amount
	t.Pot -= amount
}

// inHand returns the seats still contesting the pot, in seat order
func (t *Table) inHand() []int {
	seats := make([]int, 0, NumSeats)
	for i := range t.Seats {
		if t.Seats[i].InHand() {
			seats = append(seats, i)
		}
	}
	return seats
}

// TotalChips is pot plus every stack; constant across a hand
func (t *Table) TotalChips() int {
	total := t.Pot
	for i := range t.Seats {
		total += t.Seats[i].Chips
	}
	return total
}
