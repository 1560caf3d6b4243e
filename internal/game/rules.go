package game

import "fmt"

// Rules holds the table constants for a hand. Opponent behaviour is tuned via
// the embedded Policy.
type Rules struct {
	StartingChips    int
	OpponentChipsMin int
	OpponentChipsMax int
	// OpeningBet is the amount to call when the first betting round opens
	OpeningBet int
	// SecondRoundBet is the amount to call when the round after the draw
	// opens. Zero lets every seat check.
	SecondRoundBet int
	// RaiseUnits is how many OpeningBets an opponent raise adds
	RaiseUnits int
	// MaxRaises caps opponent raises per betting round
	MaxRaises     int
	OpponentNames [NumSeats - 1]string
	Policy        Policy
}

// DefaultRules returns the standard table: 1000 chips for the human, 800-1200
// for each opponent and a 10 chip opening bet. The second round opens at zero.
func DefaultRules() Rules {
	return Rules{
		StartingChips:    1000,
		OpponentChipsMin: 800,
		OpponentChipsMax: 1200,
		OpeningBet:       10,
		RaiseUnits:       2,
		MaxRaises:        3,
		OpponentNames:    [NumSeats - 1]string{"Computer 1", "Computer 2", "Computer 3"},
		Policy:           DefaultPolicy(),
	}
}

// Validate checks the rules are internally consistent
func (r Rules) Validate() error {
	if r.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive")
	}
	if r.OpponentChipsMin <= 0 || r.OpponentChipsMax < r.OpponentChipsMin {
		return fmt.Errorf("opponent chips range %d-%d is invalid", r.OpponentChipsMin, r.OpponentChipsMax)
	}
	if r.OpeningBet < 0 {
		return fmt.Errorf("opening bet must not be negative")
	}
	if r.SecondRoundBet < 0 {
		return fmt.Errorf("second round bet must not be negative")
	}
	if r.RaiseUnits <= 0 {
		return fmt.Errorf("raise units must be positive")
	}
	if r.MaxRaises < 0 {
		return fmt.Errorf("max raises must not be negative")
	}
	for i, name := range r.OpponentNames {
		if name == "" {
			return fmt.Errorf("opponent %d has no name", i+1)
		}
		if name == HumanName {
			return fmt.Errorf("opponent %d may not be named %q", i+1, HumanName)
		}
	}
	return r.Policy.Validate()
}

// RoundBet returns the bet to call when the given round opens
func (r Rules) RoundBet(index Round) int {
	if index == SecondRound {
		return r.SecondRoundBet
	}
	return r.OpeningBet
}

// RaiseStep is how far an opponent raise lifts the bet. A zero opening bet
// still raises by RaiseUnits chips.
func (r Rules) RaiseStep() int {
	return r.RaiseUnits * max(r.OpeningBet, 1)
}
