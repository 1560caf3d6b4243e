package simulator

import (
	"github.com/lox/drawpoker/internal/statistics"
	"github.com/lox/drawpoker/poker"
)

// Report is the machine-readable summary of a run
type Report struct {
	Hands           int                `json:"hands"`
	Seed            int64              `json:"seed"`
	Mean            float64            `json:"mean"`
	Median          float64            `json:"median"`
	StdDev          float64            `json:"stdDev"`
	CILow           float64            `json:"ciLow"`
	CIHigh          float64            `json:"ciHigh"`
	ShowdownWins    int                `json:"showdownWins"`
	NonShowdownWins int                `json:"nonShowdownWins"`
	Folds           int                `json:"folds"`
	MaxPot          int                `json:"maxPot"`
	ByCategory      map[string]float64 `json:"byCategory"`
}

// NewReport summarises stats for a run started from seed
func NewReport(seed int64, stats *statistics.Statistics) Report {
	low, high := stats.ConfidenceInterval95()
	r := Report{
		Hands:           stats.Hands,
		Seed:            seed,
		Mean:            stats.Mean(),
		Median:          stats.Median(),
		StdDev:          stats.StdDev(),
		CILow:           low,
		CIHigh:          high,
		ShowdownWins:    stats.ShowdownWins,
		NonShowdownWins: stats.NonShowdownWins,
		Folds:           stats.Folds,
		MaxPot:          stats.MaxPot,
		ByCategory:      make(map[string]float64),
	}
	for c, cs := range stats.CategoryResults {
		if cs.Hands > 0 {
			cat := poker.Category(c)
			r.ByCategory[cat.String()] = stats.CategoryMean(cat)
		}
	}
	return r
}
