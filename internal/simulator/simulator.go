package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/internal/statistics"
	"github.com/lox/drawpoker/poker"
)

// maxSteps bounds the human decisions in one hand. Betting rounds are capped
// by the raise limit, so a hand that needs more has stalled.
const maxSteps = 64

// Config holds configuration for running simulations
type Config struct {
	Hands   int
	Seed    int64
	Workers int
	Rules   game.Rules
	Logger  *log.Logger
}

// Simulator plays batches of hands with the human seat driven by the
// opponent policy, checking the engine's invariants after every action.
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Run plays every hand and returns the accumulated results. The first
// invariant violation cancels the remaining hands.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Hands <= 0 {
		return nil, fmt.Errorf("hands must be positive, got %d", s.config.Hands)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	results := make([]statistics.HandResult, s.config.Hands)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for hand := range s.config.Hands {
		handSeed := s.config.Seed + int64(hand)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playHand(ctx, handSeed)
			if err != nil {
				return fmt.Errorf("hand %d (seed %d): %w", hand+1, handSeed, err)
			}
			results[hand] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	s.logger.Info("Simulation complete", "hands", stats.Hands, "mean", fmt.Sprintf("%.3f", stats.Mean()))
	return stats, nil
}

// playHand plays a single session to the end
func (s *Simulator) playHand(ctx context.Context, seed int64) (statistics.HandResult, error) {
	rules := s.config.Rules
	session, err := game.NewSession(fmt.Sprintf("sim-%d", seed), seed, rules)
	if err != nil {
		return statistics.HandResult{}, err
	}
	total := session.TotalChips()
	if err := checkInvariants(session, total); err != nil {
		return statistics.HandResult{}, fmt.Errorf("after deal: %w", err)
	}

	// The human's jitter comes from its own stream so that the opponents'
	// draws stay exactly as they would be in a live game.
	rng := randutil.New(^seed)
	for step := 0; session.Phase != game.PhaseFinished; step++ {
		if step == maxSteps {
			return statistics.HandResult{}, fmt.Errorf("hand did not finish after %d actions", maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return statistics.HandResult{}, err
		}

		switch session.Phase {
		case game.PhaseBetting:
			action, amount := humanBet(session, rng.Float64()*rules.Policy.Jitter)
			err = session.Bet(action, amount)
		case game.PhaseDrawing:
			err = session.Draw(game.Discards(session.Seats[game.HumanSeat].Hand))
		default:
			err = fmt.Errorf("session stopped in phase %s", session.Phase)
		}
		if err != nil {
			return statistics.HandResult{}, err
		}
		if err := checkInvariants(session, total); err != nil {
			return statistics.HandResult{}, fmt.Errorf("step %d: %w", step, err)
		}
	}

	result := handResult(session)
	s.logger.Debug("Hand complete", "seed", seed, "winners", session.WinnerNames(), "net", result.Net)
	return result, nil
}

// humanBet picks the human's action the way an opponent would in its seat
func humanBet(s *game.Session, jitter float64) (game.Action, int) {
	br := s.Betting
	human := &s.Seats[game.HumanSeat]
	situation := game.Situation{
		Value:    human.Value(),
		ToCall:   br.Owed(game.HumanSeat),
		Stack:    human.Chips,
		CanRaise: br.Raises < s.Rules.MaxRaises,
	}

	switch s.Rules.Policy.Decide(situation, jitter) {
	case game.Raise:
		target := min(br.CurrentBet+s.Rules.RaiseStep(), br.Contributed[game.HumanSeat]+human.Chips)
		if target > br.CurrentBet {
			return game.Raise, target
		}
		fallthrough
	case game.Call:
		if situation.ToCall <= human.Chips {
			return game.Call, 0
		}
	}
	return game.Fold, 0
}

// checkInvariants verifies chip conservation and that no card is held twice
func checkInvariants(s *game.Session, total int) error {
	if got := s.TotalChips(); got != total {
		return fmt.Errorf("chips not conserved: %d, want %d", got, total)
	}
	if s.Pot < 0 {
		return fmt.Errorf("negative pot %d", s.Pot)
	}
	seen := make(map[poker.Card]int, game.NumSeats*poker.HandSize)
	for i, seat := range s.Seats {
		if seat.Chips < 0 {
			return fmt.Errorf("seat %d has negative chips %d", i, seat.Chips)
		}
		for _, c := range seat.Hand {
			if owner, ok := seen[c]; ok {
				return fmt.Errorf("card %s held by seats %d and %d", c, owner, i)
			}
			seen[c] = i
		}
	}
	return nil
}

func handResult(s *game.Session) statistics.HandResult {
	human := &s.Seats[game.HumanSeat]
	unit := float64(max(s.Rules.OpeningBet, 1))

	showdown := false
	for _, e := range s.Log {
		if e.Type == game.EventShowdown {
			showdown = true
			break
		}
	}
	pot := 0
	for _, p := range s.Payouts {
		pot += p
	}

	return statistics.HandResult{
		Net:            float64(s.Payouts[game.HumanSeat]-human.Contributed) / unit,
		Seed:           s.Seed,
		WentToShowdown: showdown,
		Folded:         human.Status == game.Folded,
		FinalPot:       pot,
		Category:       human.Value().Category,
	}
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS ===\n")
	fmt.Fprintf(w, "Hands played: %d\n", stats.Hands)
	fmt.Fprintf(w, "Mean: %.4f bets/hand\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bets/hand\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bets\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bets/hand\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== WINS ===\n")
	if wins := stats.ShowdownWins + stats.NonShowdownWins; wins > 0 {
		fmt.Fprintf(w, "Winning hands: %d showdown (%.1f%%), %d uncontested (%.1f%%)\n",
			stats.ShowdownWins, float64(stats.ShowdownWins)/float64(wins)*100,
			stats.NonShowdownWins, float64(stats.NonShowdownWins)/float64(wins)*100)
	}
	fmt.Fprintf(w, "Folds: %d (%.1f%%)\n", stats.Folds, float64(stats.Folds)/float64(max(stats.Hands, 1))*100)
	fmt.Fprintf(w, "Largest pot: %d chips\n", stats.MaxPot)

	fmt.Fprintf(w, "\n=== BY FINAL HAND ===\n")
	for c := range poker.NumCategories {
		cat := poker.Category(c)
		if cs := stats.CategoryResults[c]; cs.Hands > 0 {
			fmt.Fprintf(w, "%-16s %6d hands, %+.3f bets/hand\n", cat.String()+":", cs.Hands, stats.CategoryMean(cat))
		}
	}
}
