// Package oddsmath provides pure calculations over decimal betting odds:
// implied probabilities, bookmaker margins, and two-way arbitrage math.
//
// All functions are deterministic and perform no I/O. Non-positive odds are
// treated as undefined input: probability and margin functions return a 0
// sentinel, and the arbitrage helpers return values that never qualify as an
// opportunity.
package oddsmath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ImpliedProbability converts decimal odds to the bookmaker's implied win
// probability as a percentage.
//
// Formula:
//
//	implied = (1 / odds) * 100
//
// Example: odds of 2.50 imply a 40% win probability.
//
// Returns 0 when odds are non-positive; callers treat 0 as undefined.
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return (1 / odds) * 100
}

// BookmakerMargin computes the overround built into a two-outcome market
// as a percentage.
//
// Formula:
//
//	margin = (1/oddsA + 1/oddsB - 1) * 100
//
// Example: odds of 1.90/1.90 carry a margin of 5.26%. A fair book has a
// margin of 0; a negative margin means the book has mispriced the market.
//
// Returns 0 when either odds value is non-positive; callers treat 0 as
// undefined rather than as a perfectly fair book.
func BookmakerMargin(oddsA, oddsB float64) float64 {
	if oddsA <= 0 || oddsB <= 0 {
		return 0
	}
	return (1/oddsA + 1/oddsB - 1) * 100
}

// InverseSum reports the sum of inverse odds for a two-outcome market.
// A sum strictly below 1.0 means backing both outcomes locks in a profit.
// Non-positive odds yield +Inf.
func InverseSum(oddsA, oddsB float64) float64 {
	if oddsA <= 0 || oddsB <= 0 {
		return math.Inf(1)
	}
	return 1/oddsA + 1/oddsB
}

// ArbitrageProfit converts an inverse-odds sum into the guaranteed profit
// percentage on total stake.
//
// Formula:
//
//	profit = (1/inverseSum - 1) * 100
//
// Example: an inverse sum of 0.9308 yields a 7.44% profit.
//
// Returns 0 when inverseSum is non-positive or infinite. The result is
// negative when inverseSum exceeds 1; callers decide the emission threshold.
func ArbitrageProfit(inverseSum float64) float64 {
	if inverseSum <= 0 || math.IsInf(inverseSum, 1) {
		return 0
	}
	return (1/inverseSum - 1) * 100
}

// StakeSplit returns the bankroll percentages to stake on each outcome so
// both settle for the same payout.
//
// Formula:
//
//	stakeA = (1/oddsA) / inverseSum * 100
//	stakeB = 100 - stakeA
//
// The two percentages sum to 100. Both are 0 when either odds value is
// non-positive.
func StakeSplit(oddsA, oddsB float64) (stakeA, stakeB float64) {
	sum := InverseSum(oddsA, oddsB)
	if math.IsInf(sum, 1) {
		return 0, 0
	}
	stakeA = (1 / oddsA) / sum * 100
	return stakeA, 100 - stakeA
}

// Round2 rounds to two decimal places. Intended for presentation
// boundaries only; intermediate math stays at full precision.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ParseOdds parses an odds string in decimal ("1.50", "150") or fractional
// ("3/2") notation into decimal odds. Fractional odds convert as
// numerator/denominator + 1, so "3/2" parses to 2.5.
func ParseOdds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("oddsmath: empty odds string")
	}
	if num, denom, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("oddsmath: parse fractional odds %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(denom), 64)
		if err != nil {
			return 0, fmt.Errorf("oddsmath: parse fractional odds %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("oddsmath: fractional odds %q: zero denominator", s)
		}
		return n/d + 1, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("oddsmath: parse odds %q: %w", s, err)
	}
	return v, nil
}
