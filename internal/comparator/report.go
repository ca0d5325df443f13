package comparator

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/courtedge/courtbot/internal/domain"
)

// BuildReport runs the full analysis over a sanitized batch and assembles
// the per-pass report: distinct sources and tournaments, a best-odds
// sample, arbitrage opportunities, value bets, and the per-source margin
// comparison. An empty batch yields a well-formed zero report. Apart from
// RunID and GeneratedAt the output is deterministic for a given input.
func BuildReport(records []domain.MatchRecord, opts Options) domain.Report {
	rep := domain.Report{
		RunID:          uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		TotalMatches:   len(records),
		DroppedRecords: opts.DroppedRecords,
	}

	sources := make(map[string]struct{})
	tournaments := make(map[string]struct{})
	for _, rec := range records {
		sources[rec.SourceName] = struct{}{}
		tournaments[rec.Tournament] = struct{}{}
	}
	rep.Sources = sortedKeys(sources)
	rep.Tournaments = sortedKeys(tournaments)

	groups, _ := GroupRecords(records)
	limit := opts.sampleLimit()

	rep.BestOdds = make([]domain.BestOdds, 0, len(groups))
	for _, group := range groups {
		if len(rep.BestOdds) == limit {
			break
		}
		rep.BestOdds = append(rep.BestOdds, SelectBestOdds(group))
	}

	opps := FindOpportunities(groups, opts)
	rep.OpportunityCount = len(opps)
	if len(opps) > limit {
		opps = opps[:limit]
	}
	rep.Opportunities = opps

	bets := FindValueBets(records, opts.ValueBetMargin, 0)
	rep.ValueBetCount = len(bets)
	if len(bets) > limit {
		bets = bets[:limit]
	}
	rep.ValueBets = bets

	rep.SourceComparisons = CompareSources(records)
	return rep
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
