package game

import (
	"fmt"
	"slices"

	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/poker"
)

// Phase is the externally visible stage of a hand
type Phase string

const (
	PhaseBetting  Phase = "betting"
	PhaseDrawing  Phase = "drawing"
	PhaseShowdown Phase = "showdown"
	PhaseFinished Phase = "finished"
)

// Session is one hand of five-card draw: the aggregate every operation reads
// and mutates.
type Session struct {
	ID    string
	Phase Phase
	Table
	Betting *BettingRound
	Deck    *poker.Deck
	Rules   Rules

	// Winners holds the seats that won the main pot, in seat order
	Winners     []int
	WinningHand string
	Payouts     [NumSeats]int

	// Seed and Step derive every random draw after the deal
	Seed int64
	Step uint64
	Log  []Event
}

// NewSession deals a fresh hand. The seed determines the shuffle, the
// opponents' stacks and every later policy draw.
func NewSession(id string, seed int64, rules Rules, opts ...SessionOption) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	rng := randutil.New(seed)
	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(rng)
	}
	var stacks [NumSeats]int
	if cfg.stacks != nil {
		stacks = *cfg.stacks
	} else {
		stacks[HumanSeat] = rules.StartingChips
		spread := rules.OpponentChipsMax - rules.OpponentChipsMin + 1
		for i := 1; i < NumSeats; i++ {
			stacks[i] = rules.OpponentChipsMin + rng.IntN(spread)
		}
	}

	s := &Session{
		ID:    id,
		Deck:  deck,
		Rules: rules,
		Seed:  seed,
	}
	for i := range s.Seats {
		if stacks[i] <= 0 {
			return nil, fmt.Errorf("seat %d must start with chips, got %d", i, stacks[i])
		}
		name := HumanName
		if i != HumanSeat {
			name = rules.OpponentNames[i-1]
		}
		cards, err := deck.Deal(poker.HandSize)
		if err != nil {
			return nil, fmt.Errorf("dealing to seat %d: %w", i, err)
		}
		s.Seats[i] = Seat{ID: i, Name: name, Chips: stacks[i], Status: Active}
		copy(s.Seats[i].Hand[:], cards)
	}
	s.record(Event{Type: EventDeal, Seat: -1, Detail: "cards dealt"})

	s.openRound(FirstRound)
	if err := s.advance(); err != nil {
		return nil, err
	}
	return s, nil
}

// Bet applies the human's betting action and then lets opponents respond.
// amount is the new bet level for a raise and ignored otherwise.
func (s *Session) Bet(action Action, amount int) error {
	if s.Phase != PhaseBetting {
		return fmt.Errorf("%w: cannot bet during %s", ErrInvalidPhase, s.Phase)
	}
	br := s.Betting

	var err error
	switch action {
	case Call:
		owed := br.Owed(HumanSeat)
		if err = br.Call(&s.Table, HumanSeat); err == nil {
			s.recordAction(HumanSeat, Call, owed)
		}
	case Raise:
		if amount <= 0 {
			return fmt.Errorf("%w: raise needs a positive amount", ErrInvalidAction)
		}
		if err = br.Raise(&s.Table, HumanSeat, amount); err == nil {
			s.recordAction(HumanSeat, Raise, amount)
		}
	case Fold:
		if err = br.Fold(&s.Table, HumanSeat); err == nil {
			s.recordAction(HumanSeat, Fold, 0)
		}
	default:
		return fmt.Errorf("%w: unknown action %d", ErrInvalidAction, action)
	}
	if err != nil {
		return err
	}
	s.Step++
	return s.advance()
}

// Draw replaces the human's discards and then runs the opponents' draws.
func (s *Session) Draw(discards []int) error {
	if s.Phase != PhaseDrawing {
		return fmt.Errorf("%w: cannot draw during %s", ErrInvalidPhase, s.Phase)
	}
	if err := ValidateDiscards(discards); err != nil {
		return err
	}
	if !s.Seats[HumanSeat].InHand() {
		return fmt.Errorf("%w: folded seats do not draw", ErrInvalidPhase)
	}
	if err := s.runDraws(discards); err != nil {
		return err
	}
	s.Step++
	s.openRound(SecondRound)
	return s.advance()
}

// ValidateDiscards checks a discard selection: at most five unique positions
// within the hand.
func ValidateDiscards(discards []int) error {
	if len(discards) > poker.HandSize {
		return fmt.Errorf("%w: %d discards, at most %d allowed", ErrInvalidIndices, len(discards), poker.HandSize)
	}
	var seen [poker.HandSize]bool
	for _, i := range discards {
		if i < 0 || i >= poker.HandSize {
			return fmt.Errorf("%w: index %d out of range 0-%d", ErrInvalidIndices, i, poker.HandSize-1)
		}
		if seen[i] {
			return fmt.Errorf("%w: index %d repeated", ErrInvalidIndices, i)
		}
		seen[i] = true
	}
	return nil
}

// runDraws replaces cards for every seat still in the hand, human first. All
// discards are known up front, so the deck is checked once before any seat
// draws.
func (s *Session) runDraws(human []int) error {
	var plan [NumSeats][]int
	need := 0
	for i := range s.Seats {
		if !s.Seats[i].InHand() {
			continue
		}
		if i == HumanSeat {
			plan[i] = human
		} else {
			plan[i] = Discards(s.Seats[i].Hand)
		}
		need += len(plan[i])
	}
	if need > s.Deck.Remaining() {
		return fmt.Errorf("%w: draw needs %d cards, %d left", poker.ErrDeckExhausted, need, s.Deck.Remaining())
	}

	for i := range s.Seats {
		if !s.Seats[i].InHand() {
			continue
		}
		if err := s.replace(i, plan[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) replace(seat int, discards []int) error {
	cards, err := s.Deck.Deal(len(discards))
	if err != nil {
		return err
	}
	st := &s.Seats[seat]
	for n, i := range slices.Sorted(slices.Values(discards)) {
		st.Hand[i] = cards[n]
		st.Drawn[i] = true
	}
	s.record(Event{Type: EventDraw, Seat: seat, Amount: len(discards)})
	return nil
}

func (s *Session) openRound(index Round) {
	s.Phase = PhaseBetting
	s.Betting = NewBettingRound(index, s.Rules.RoundBet(index), &s.Table)
	s.record(Event{Type: EventRound, Seat: -1, Detail: fmt.Sprintf("%s betting round", index)})
}

// advance drives the hand forward until the human has to act or the hand is
// over. Each pass handles at most one seat action, draw or phase change, and
// every betting round ends after a bounded number of raises.
func (s *Session) advance() error {
	for {
		switch s.Phase {
		case PhaseBetting:
			if len(s.inHand()) == 1 {
				s.finishUncontested()
				return nil
			}
			if next, ok := s.Betting.Next(); ok {
				if next == HumanSeat {
					return nil
				}
				if err := s.opponentBet(next); err != nil {
					return err
				}
				continue
			}
			if s.Betting.Index == FirstRound {
				s.Phase = PhaseDrawing
			} else {
				s.Phase = PhaseShowdown
			}
		case PhaseDrawing:
			if s.Seats[HumanSeat].InHand() {
				return nil
			}
			// The human has folded: opponents draw on their own
			if err := s.runDraws(nil); err != nil {
				return err
			}
			s.openRound(SecondRound)
		case PhaseShowdown:
			s.showdown()
			return nil
		default:
			return nil
		}
	}
}

// jitter draws the policy's random term for the current step
func (s *Session) jitter() float64 {
	j := randutil.Derive(s.Seed, s.Step).Float64() * s.Rules.Policy.Jitter
	s.Step++
	return j
}

// opponentBet asks the policy for an action and applies it
func (s *Session) opponentBet(seat int) error {
	br := s.Betting
	st := &s.Seats[seat]
	situation := Situation{
		Value:    st.Value(),
		ToCall:   br.Owed(seat),
		Stack:    st.Chips,
		CanRaise: br.Raises < s.Rules.MaxRaises,
	}
	action := s.Rules.Policy.Decide(situation, s.jitter())

	switch action {
	case Raise:
		target := br.CurrentBet + s.Rules.RaiseStep()
		if most := br.Contributed[seat] + st.Chips; target > most {
			target = most
		}
		if target > br.CurrentBet {
			if err := br.Raise(&s.Table, seat, target); err != nil {
				return fmt.Errorf("opponent %d raise: %w", seat, err)
			}
			s.recordAction(seat, Raise, target)
			return nil
		}
		fallthrough
	case Call:
		before := st.Chips
		if err := br.CallAllIn(&s.Table, seat); err != nil {
			return fmt.Errorf("opponent %d call: %w", seat, err)
		}
		s.recordAction(seat, Call, before-st.Chips)
		return nil
	default:
		if err := br.Fold(&s.Table, seat); err != nil {
			return fmt.Errorf("opponent %d fold: %w", seat, err)
		}
		s.recordAction(seat, Fold, 0)
		return nil
	}
}

func (s *Session) recordAction(seat int, action Action, amount int) {
	s.record(Event{Type: EventAction, Seat: seat, Action: action.String(), Amount: amount})
}

// finishUncontested awards the whole pot to the only seat left
func (s *Session) finishUncontested() {
	winner := s.inHand()[0]
	amount := s.Pot
	s.award(winner, amount)
	s.Payouts[winner] += amount
	s.Winners = []int{winner}
	s.WinningHand = ""
	s.record(Event{Type: EventWin, Seat: winner, Amount: amount})
	s.finish()
}

// showdown evaluates every hand still in and pays each pot to its best
// eligible hands.
func (s *Session) showdown() {
	values := make(map[int]poker.HandValue, NumSeats)
	for _, i := range s.inHand() {
		values[i] = s.Seats[i].Value()
		s.record(Event{Type: EventShowdown, Seat: i, Detail: values[i].Describe()})
	}

	for n, pot := range buildPots(&s.Table) {
		var best []int
		for _, i := range pot.Eligible {
			if len(best) == 0 {
				best = []int{i}
				continue
			}
			switch poker.Compare(values[i], values[best[0]]) {
			case 1:
				best = []int{i}
			case 0:
				best = append(best, i)
			}
		}
		for seat, amount := range splitPot(pot.Amount, best) {
			s.award(seat, amount)
			s.Payouts[seat] += amount
		}
		if n == 0 {
			s.Winners = best
			s.WinningHand = values[best[0]].Describe()
		}
	}
	for _, w := range s.Winners {
		s.record(Event{Type: EventWin, Seat: w, Amount: s.Payouts[w], Detail: s.WinningHand})
	}
	s.finish()
}

func (s *Session) finish() {
	s.Phase = PhaseFinished
	s.Betting = nil
}

// WinnerNames returns the names of the main pot winners
func (s *Session) WinnerNames() []string {
	names := make([]string, len(s.Winners))
	for i, w := range s.Winners {
		names[i] = s.Seats[w].Name
	}
	return names
}

// Clone returns a deep copy that can be mutated independently
func (s *Session) Clone() *Session {
	c := *s
	c.Betting = s.Betting.Clone()
	c.Deck = s.Deck.Clone()
	c.Winners = slices.Clone(s.Winners)
	c.Log = slices.Clone(s.Log)
	return &c
}
