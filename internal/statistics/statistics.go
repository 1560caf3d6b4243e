package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/drawpoker/poker"
)

// HandResult is the outcome of one simulated hand from the human seat
type HandResult struct {
	Net            float64 // Net opening bets won or lost
	Seed           int64   // Session seed, for replay
	WentToShowdown bool
	Folded         bool
	FinalPot       int            // Chips paid out at the end of the hand
	Category       poker.Category // Category of the human's final hand
}

// CategoryStats tracks results for one final hand category
type CategoryStats struct {
	Hands int
	Sum   float64
}

// Statistics accumulates simulation results
type Statistics struct {
	Hands  int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // All values, for median and percentiles

	ShowdownWins    int
	NonShowdownWins int
	ShowdownNet     float64 // Net from hands that reached showdown, wins and losses
	NonShowdownNet  float64
	AllNet          float64
	Folds           int

	CategoryResults [poker.NumCategories]CategoryStats

	MaxPot int
}

// Mean returns the average result in opening bets per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.Sum / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	margin := 1.96 * s.StdError()
	return s.Mean() - margin, s.Mean() + margin
}

// Add incorporates a hand result
func (s *Statistics) Add(result HandResult) {
	net := result.Net
	s.Hands++
	s.Sum += net
	s.Sum2 += net * net
	s.Values = append(s.Values, net)

	if net > 0 {
		if result.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if result.WentToShowdown {
		s.ShowdownNet += net
	} else {
		s.NonShowdownNet += net
	}
	s.AllNet += net
	if result.Folded {
		s.Folds++
	}

	if c := int(result.Category); c < poker.NumCategories {
		s.CategoryResults[c].Hands++
		s.CategoryResults[c].Sum += net
	}
	s.MaxPot = max(s.MaxPot, result.FinalPot)
}

// Median returns the median result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated value at p in [0, 1]
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(s.Values))

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// CategoryMean returns the mean result for hands ending in category c
func (s *Statistics) CategoryMean(c poker.Category) float64 {
	if int(c) >= poker.NumCategories {
		return 0
	}
	cs := s.CategoryResults[c]
	if cs.Hands == 0 {
		return 0
	}
	return cs.Sum / float64(cs.Hands)
}

// IsLedgerBalanced checks the showdown split adds up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllNet-s.ShowdownNet-s.NonShowdownNet) <= 1e-6
}

// Validate checks the accumulated data is consistent
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: all=%.6f, showdown=%.6f, non-showdown=%.6f",
			s.AllNet, s.ShowdownNet, s.NonShowdownNet)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	total := 0
	for _, cs := range s.CategoryResults {
		total += cs.Hands
	}
	if total != s.Hands {
		return fmt.Errorf("category hands total (%d) does not match total hands (%d)", total, s.Hands)
	}
	return nil
}
