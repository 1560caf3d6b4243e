package game

import (
	"fmt"

	"github.com/lox/drawpoker/poker"
)

// Policy holds the opponent decision thresholds. Strength is the hand
// category normalised to [0,1]; the score an opponent bets on is
//
//	strength + jitter - CostWeight*toCall/stack
type Policy struct {
	// RaiseThreshold is the minimum score for a raise
	RaiseThreshold float64
	// CallThreshold is the minimum score for a call
	CallThreshold float64
	// CheapCallRatio is the largest toCall/stack that is always called
	CheapCallRatio float64
	CostWeight     float64
	// Jitter is the exclusive upper bound of the random term
	Jitter float64
}

// DefaultPolicy raises with a straight or better, calls with a pair or
// better and never folds for less than five percent of its stack.
func DefaultPolicy() Policy {
	return Policy{
		RaiseThreshold: 0.5,
		CallThreshold:  0.125,
		CheapCallRatio: 0.05,
		CostWeight:     0.1,
		Jitter:         0.1,
	}
}

// Validate checks the thresholds are usable
func (p Policy) Validate() error {
	if p.CallThreshold < 0 || p.CallThreshold > p.RaiseThreshold {
		return fmt.Errorf("call threshold %.3f must be between 0 and the raise threshold %.3f", p.CallThreshold, p.RaiseThreshold)
	}
	if p.CheapCallRatio < 0 || p.CostWeight < 0 || p.Jitter < 0 {
		return fmt.Errorf("policy ratios and weights must not be negative")
	}
	return nil
}

// Situation is what an opponent sees when asked to bet
type Situation struct {
	Value    poker.HandValue
	ToCall   int
	Stack    int
	CanRaise bool
}

// CostRatio is the price of calling relative to the stack
func (s Situation) CostRatio() float64 {
	if s.Stack <= 0 {
		return 0
	}
	return float64(s.ToCall) / float64(s.Stack)
}

// Score combines strength, jitter and cost into the value compared against
// the thresholds.
func (p Policy) Score(s Situation, jitter float64) float64 {
	return s.Value.Strength() + jitter - p.CostWeight*s.CostRatio()
}

// bettingRule maps a situation to an action when it matches. Rules are tried
// in order; the first match wins.
type bettingRule struct {
	name   string
	action Action
	match  func(p Policy, s Situation, score float64) bool
}

var bettingRules = []bettingRule{
	{"broke", Call, func(_ Policy, s Situation, _ float64) bool {
		return s.Stack <= 0
	}},
	{"strong", Raise, func(p Policy, s Situation, score float64) bool {
		return s.CanRaise && score >= p.RaiseThreshold
	}},
	{"playable", Call, func(p Policy, _ Situation, score float64) bool {
		return score >= p.CallThreshold
	}},
	{"free", Call, func(_ Policy, s Situation, _ float64) bool {
		return s.ToCall == 0
	}},
	{"cheap", Call, func(p Policy, s Situation, _ float64) bool {
		return s.CostRatio() <= p.CheapCallRatio
	}},
}

// Decide picks a betting action. jitter must lie in [0, Jitter).
func (p Policy) Decide(s Situation, jitter float64) Action {
	action, _ := p.decide(s, jitter)
	return action
}

func (p Policy) decide(s Situation, jitter float64) (Action, string) {
	score := p.Score(s, jitter)
	for _, rule := range bettingRules {
		if rule.match(p, s, score) {
			return rule.action, rule.name
		}
	}
	return Fold, "weak"
}

// Discards returns the hand positions an opponent throws away: every card not
// part of a pair, trips or quads. Straights and better stand pat.
func Discards(hand [poker.HandSize]Card) []int {
	if poker.Evaluate(hand).Category >= poker.Straight {
		return nil
	}
	keep := make(map[int]bool, poker.HandSize)
	for _, i := range poker.Grouped(hand) {
		keep[i] = true
	}
	var discards []int
	for i := range hand {
		if !keep[i] {
			discards = append(discards, i)
		}
	}
	return discards
}
