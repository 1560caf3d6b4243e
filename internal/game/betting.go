package game

import (
	"fmt"
	"slices"
	"strings"
)

// Round identifies which of the two betting rounds is in progress
type Round int

const (
	FirstRound  Round = 1
	SecondRound Round = 2
)

func (r Round) String() string {
	switch r {
	case FirstRound:
		return "first"
	case SecondRound:
		return "second"
	default:
		return "none"
	}
}

// Action represents a betting action
type Action int

const (
	Fold Action = iota
	Call
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "call", "raise"}[a]
}

// ParseAction parses the wire name of an action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "fold":
		return Fold, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
}

// BettingRound tracks one round of betting: the bet to call, what each seat
// has put in this round and who still has to act. Every method validates
// before it mutates, so a rejected action leaves the round and table as they
// were.
type BettingRound struct {
	Index       Round
	CurrentBet  int
	Contributed [NumSeats]int
	// ToAct holds the seats still to act, in acting order
	ToAct   []int
	Raises  int
	Actions int
}

// NewBettingRound opens a round at the given bet. Every seat that can act is
// queued in seat order. With fewer than two such seats there is nobody to bet
// against and the round opens closed.
func NewBettingRound(index Round, openingBet int, t *Table) *BettingRound {
	br := &BettingRound{Index: index, CurrentBet: openingBet}
	for i := range t.Seats {
		if t.Seats[i].CanAct() {
			br.ToAct = append(br.ToAct, i)
		}
	}
	if len(br.ToAct) < 2 {
		br.ToAct = nil
	}
	return br
}

// Closed reports whether every seat has matched the bet or left the round
func (br *BettingRound) Closed() bool {
	return len(br.ToAct) == 0
}

// Next returns the seat due to act
func (br *BettingRound) Next() (int, bool) {
	if len(br.ToAct) == 0 {
		return 0, false
	}
	return br.ToAct[0], true
}

// Owed returns what the seat must add to call
func (br *BettingRound) Owed(seat int) int {
	owed := br.CurrentBet - br.Contributed[seat]
	if owed < 0 {
		return 0
	}
	return owed
}

func (br *BettingRound) checkTurn(t *Table, seat int) error {
	next, ok := br.Next()
	if !ok || next != seat {
		return fmt.Errorf("%w: seat %d is not due to act", ErrInvalidPhase, seat)
	}
	if !t.Seats[seat].CanAct() {
		return fmt.Errorf("%w: seat %d is %s", ErrInvalidAction, seat, t.Seats[seat].Status)
	}
	return nil
}

func (br *BettingRound) pay(t *Table, seat, amount int) {
	t.contribute(seat, amount)
	br.Contributed[seat] += amount
}

func (br *BettingRound) done(seat int) {
	for i, s := range br.ToAct {
		if s == seat {
			br.ToAct = append(br.ToAct[:i:i], br.ToAct[i+1:]...)
			break
		}
	}
	br.Actions++
}

// Call matches the current bet. With nothing owed it is a check.
func (br *BettingRound) Call(t *Table, seat int) error {
	if err := br.checkTurn(t, seat); err != nil {
		return err
	}
	owed := br.Owed(seat)
	if owed > t.Seats[seat].Chips {
		return fmt.Errorf("%w: call needs %d, stack is %d", ErrInsufficientChips, owed, t.Seats[seat].Chips)
	}
	br.pay(t, seat, owed)
	br.done(seat)
	return nil
}

// CallAllIn puts a seat's whole stack in when it cannot cover the full call.
// The seat stays in the hand and is paid from the pots it is eligible for.
func (br *BettingRound) CallAllIn(t *Table, seat int) error {
	if err := br.checkTurn(t, seat); err != nil {
		return err
	}
	chips := t.Seats[seat].Chips
	if chips >= br.Owed(seat) {
		return br.Call(t, seat)
	}
	br.pay(t, seat, chips)
	br.done(seat)
	return nil
}

// Raise lifts the bet to amount, the new total for this round, and requeues
// every other seat that can still act, in seat order after the raiser.
func (br *BettingRound) Raise(t *Table, seat, amount int) error {
	if err := br.checkTurn(t, seat); err != nil {
		return err
	}
	if amount <= br.CurrentBet {
		return fmt.Errorf("%w: raise to %d must exceed the current bet of %d", ErrInvalidAction, amount, br.CurrentBet)
	}
	need := amount - br.Contributed[seat]
	if need > t.Seats[seat].Chips {
		return fmt.Errorf("%w: raise to %d needs %d, stack is %d", ErrInsufficientChips, amount, need, t.Seats[seat].Chips)
	}
	br.pay(t, seat, need)
	br.CurrentBet = amount
	br.Raises++
	br.Actions++

	br.ToAct = br.ToAct[:0]
	for i := 1; i < NumSeats; i++ {
		other := (seat + i) % NumSeats
		if t.Seats[other].CanAct() {
			br.ToAct = append(br.ToAct, other)
		}
	}
	return nil
}

// Fold removes the seat from the round and from the pot
func (br *BettingRound) Fold(t *Table, seat int) error {
	if err := br.checkTurn(t, seat); err != nil {
		return err
	}
	t.Seats[seat].Status = Folded
	br.done(seat)
	return nil
}

// Clone returns a deep copy of the round
func (br *BettingRound) Clone() *BettingRound {
	if br == nil {
		return nil
	}
	c := *br
	c.ToAct = slices.Clone(br.ToAct)
	return &c
}
