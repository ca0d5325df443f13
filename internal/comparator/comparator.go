// Package comparator implements the analysis core: grouping records by
// matchup across bookmakers, selecting the best odds per outcome, detecting
// two-way arbitrage, ranking low-margin value bets, and assembling the
// per-pass report.
//
// Everything here is pure computation over records already sanitized by the
// ingest package. Nothing in this package performs I/O.
package comparator

import (
	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

// DefaultSampleLimit caps the best-odds, opportunity, and value-bet lists
// embedded in a report.
const DefaultSampleLimit = 10

// Options tune a comparison pass.
type Options struct {
	// MinProfitPct drops arbitrage opportunities below this guaranteed
	// profit percentage. Zero keeps every opportunity.
	MinProfitPct float64

	// RequireTwoSources skips matchups where both best-odds legs come from
	// the same bookmaker. Off by default: a single book quoting both sides
	// generously is still reported.
	RequireTwoSources bool

	// ValueBetMargin is the exclusive upper bound on bookmaker margin for
	// a record to rank as a value bet.
	ValueBetMargin float64

	// SampleLimit bounds the embedded report lists. Zero means
	// DefaultSampleLimit.
	SampleLimit int

	// DroppedRecords is carried into the report for visibility; the
	// comparator itself never sees invalid records.
	DroppedRecords int
}

func (o Options) sampleLimit() int {
	if o.SampleLimit <= 0 {
		return DefaultSampleLimit
	}
	return o.SampleLimit
}

// Enrich attaches per-record market metrics, rounded for presentation.
// Records with non-positive odds keep zero metrics.
func Enrich(records []domain.MatchRecord) []domain.EnrichedMatch {
	enriched := make([]domain.EnrichedMatch, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, domain.EnrichedMatch{
			MatchRecord: rec,
			DerivedMetrics: domain.DerivedMetrics{
				ImpliedProbA: oddsmath.Round2(oddsmath.ImpliedProbability(rec.OddsA)),
				ImpliedProbB: oddsmath.Round2(oddsmath.ImpliedProbability(rec.OddsB)),
				Margin:       oddsmath.Round2(oddsmath.BookmakerMargin(rec.OddsA, rec.OddsB)),
			},
		})
	}
	return enriched
}
