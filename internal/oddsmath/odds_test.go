package oddsmath

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestImpliedProbability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		odds float64
		want float64
	}{
		{name: "even money", odds: 2.0, want: 50},
		{name: "short favorite", odds: 1.25, want: 80},
		{name: "outsider", odds: 4.0, want: 25},
		{name: "certainty", odds: 1.0, want: 100},
		{name: "zero odds sentinel", odds: 0, want: 0},
		{name: "negative odds sentinel", odds: -1.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImpliedProbability(tt.odds)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("ImpliedProbability(%v) = %v, want %v", tt.odds, got, tt.want)
			}
		})
	}
}

func TestImpliedProbabilityMonotonic(t *testing.T) {
	t.Parallel()

	prev := ImpliedProbability(1.01)
	for odds := 1.11; odds < 20; odds += 0.1 {
		got := ImpliedProbability(odds)
		if got >= prev {
			t.Fatalf("ImpliedProbability not strictly decreasing at odds %v: %v >= %v", odds, got, prev)
		}
		prev = got
	}
}

func TestBookmakerMargin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		oddsA float64
		oddsB float64
		want  float64
		tol   float64
	}{
		{name: "typical book", oddsA: 1.90, oddsB: 1.90, want: 5.2631578947, tol: 1e-9},
		{name: "fair book", oddsA: 2.0, oddsB: 2.0, want: 0, tol: 1e-9},
		{name: "negative margin", oddsA: 2.10, oddsB: 2.20, want: -6.9264069264, tol: 1e-9},
		{name: "zero first leg sentinel", oddsA: 0, oddsB: 2.0, want: 0, tol: 0},
		{name: "zero second leg sentinel", oddsA: 2.0, oddsB: 0, want: 0, tol: 0},
		{name: "negative leg sentinel", oddsA: -1, oddsB: 2.0, want: 0, tol: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BookmakerMargin(tt.oddsA, tt.oddsB)
			if !almostEqual(got, tt.want, tt.tol) {
				t.Errorf("BookmakerMargin(%v, %v) = %v, want %v", tt.oddsA, tt.oddsB, got, tt.want)
			}
		})
	}
}

func TestBookmakerMarginSymmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]float64{{1.50, 2.80}, {1.90, 1.95}, {2.10, 2.20}, {1.01, 15.0}}
	for _, p := range pairs {
		ab := BookmakerMargin(p[0], p[1])
		ba := BookmakerMargin(p[1], p[0])
		if ab != ba {
			t.Errorf("BookmakerMargin(%v, %v) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestInverseSum(t *testing.T) {
	t.Parallel()

	if got := InverseSum(2.0, 2.0); !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("InverseSum(2, 2) = %v, want 1", got)
	}
	if got := InverseSum(2.10, 2.20); !almostEqual(got, 0.9307359307, 1e-9) {
		t.Errorf("InverseSum(2.10, 2.20) = %v, want 0.9307359307", got)
	}
	if got := InverseSum(0, 2.0); !math.IsInf(got, 1) {
		t.Errorf("InverseSum(0, 2) = %v, want +Inf", got)
	}
	if got := InverseSum(2.0, -3.0); !math.IsInf(got, 1) {
		t.Errorf("InverseSum(2, -3) = %v, want +Inf", got)
	}
}

func TestArbitrageProfit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inverseSum float64
		want       float64
		tol        float64
	}{
		{name: "clear arbitrage", inverseSum: 0.9307359307, want: 7.4418604651, tol: 1e-8},
		{name: "boundary yields zero", inverseSum: 1.0, want: 0, tol: 0},
		{name: "overround yields negative", inverseSum: 1.05, want: -4.7619047619, tol: 1e-9},
		{name: "zero sentinel", inverseSum: 0, want: 0, tol: 0},
		{name: "infinite sentinel", inverseSum: math.Inf(1), want: 0, tol: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArbitrageProfit(tt.inverseSum)
			if !almostEqual(got, tt.want, tt.tol) {
				t.Errorf("ArbitrageProfit(%v) = %v, want %v", tt.inverseSum, got, tt.want)
			}
		})
	}
}

func TestStakeSplitSumsToHundred(t *testing.T) {
	t.Parallel()

	pairs := [][2]float64{{2.10, 2.20}, {1.50, 3.20}, {1.01, 25.0}, {2.0, 2.0}, {1.30, 3.50}}
	for _, p := range pairs {
		a, b := StakeSplit(p[0], p[1])
		if sum := a + b; !almostEqual(sum, 100, 1e-9) {
			t.Errorf("StakeSplit(%v, %v) sums to %v, want 100", p[0], p[1], sum)
		}
		if a <= 0 || b <= 0 {
			t.Errorf("StakeSplit(%v, %v) = (%v, %v), want both positive", p[0], p[1], a, b)
		}
	}
}

func TestStakeSplitInvalidOdds(t *testing.T) {
	t.Parallel()

	a, b := StakeSplit(0, 2.0)
	if a != 0 || b != 0 {
		t.Errorf("StakeSplit(0, 2) = (%v, %v), want (0, 0)", a, b)
	}
}

// TestArbitrageScenario walks the full math for best odds 2.10/2.20, the
// kind of split that comes out of two books quoting (2.10, 2.05) and
// (1.95, 2.20) on the same match.
func TestArbitrageScenario(t *testing.T) {
	t.Parallel()

	sum := InverseSum(2.10, 2.20)
	if sum >= 1 {
		t.Fatalf("InverseSum(2.10, 2.20) = %v, want < 1", sum)
	}

	profit := ArbitrageProfit(sum)
	if !almostEqual(profit, 7.44, 0.01) {
		t.Errorf("profit = %v, want ~7.44", profit)
	}

	stakeA, stakeB := StakeSplit(2.10, 2.20)
	if !almostEqual(stakeA, 51.16, 0.01) {
		t.Errorf("stakeA = %v, want ~51.16", stakeA)
	}
	if !almostEqual(stakeB, 48.84, 0.01) {
		t.Errorf("stakeB = %v, want ~48.84", stakeB)
	}

	// Equal payout check: either leg winning returns the same amount.
	payoutA := stakeA * 2.10
	payoutB := stakeB * 2.20
	if !almostEqual(payoutA, payoutB, 1e-6) {
		t.Errorf("payouts differ: %v vs %v", payoutA, payoutB)
	}
	if !almostEqual(payoutA-100, profit, 1e-6) {
		t.Errorf("payout %v does not match profit %v over 100 staked", payoutA, profit)
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{in: 7.4418604651, want: 7.44},
		{in: 48.8372093023, want: 48.84},
		{in: -1.2345, want: -1.23},
		{in: 2.5, want: 2.5},
		{in: 0, want: 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseOdds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "decimal", in: "1.50", want: 1.5},
		{name: "integer decimal", in: "150", want: 150},
		{name: "fractional", in: "3/2", want: 2.5},
		{name: "fractional longshot", in: "10/1", want: 11},
		{name: "padded", in: " 2.20 ", want: 2.2},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "evens", wantErr: true},
		{name: "zero denominator", in: "3/0", wantErr: true},
		{name: "bad numerator", in: "x/2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOdds(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseOdds(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOdds(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseOdds(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
