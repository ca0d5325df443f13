package comparator

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

// DetectArbitrage evaluates one matchup for a guaranteed two-way profit at
// the best available odds. Groups backed by fewer than two records never
// emit, even when a lone quote's own margin is negative. Emission requires
// the inverse-odds sum strictly below 1.0 and the resulting profit at or
// above opts.MinProfitPct.
func DetectArbitrage(group *domain.MatchupGroup, best domain.BestOdds, opts Options) (domain.ArbitrageOpportunity, bool) {
	if len(group.Records) < 2 {
		return domain.ArbitrageOpportunity{}, false
	}
	if opts.RequireTwoSources && best.SourceA == best.SourceB {
		return domain.ArbitrageOpportunity{}, false
	}

	sum := oddsmath.InverseSum(best.OddsA, best.OddsB)
	if sum >= 1 {
		return domain.ArbitrageOpportunity{}, false
	}
	profit := oddsmath.ArbitrageProfit(sum)
	if profit < opts.MinProfitPct {
		return domain.ArbitrageOpportunity{}, false
	}
	stakeA, stakeB := oddsmath.StakeSplit(best.OddsA, best.OddsB)

	return domain.ArbitrageOpportunity{
		ID:         uuid.New().String(),
		MatchupKey: best.Key,
		PlayerA:    best.PlayerA,
		PlayerB:    best.PlayerB,
		Tournament: best.Tournament,
		OddsA:      best.OddsA,
		SourceA:    best.SourceA,
		OddsB:      best.OddsB,
		SourceB:    best.SourceB,
		ProfitPct:  oddsmath.Round2(profit),
		StakeAPct:  oddsmath.Round2(stakeA),
		StakeBPct:  oddsmath.Round2(stakeB),
		DetectedAt: time.Now().UTC(),
	}, true
}

// FindOpportunities runs detection over every group and orders the result
// by profit descending. Groups tie on profit in first-seen order.
func FindOpportunities(groups []*domain.MatchupGroup, opts Options) []domain.ArbitrageOpportunity {
	opps := make([]domain.ArbitrageOpportunity, 0)
	for _, group := range groups {
		best := SelectBestOdds(group)
		if opp, ok := DetectArbitrage(group, best, opts); ok {
			opps = append(opps, opp)
		}
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPct > opps[j].ProfitPct
	})
	return opps
}
