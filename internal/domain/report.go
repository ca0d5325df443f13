package domain

import "time"

// SourceComparison summarizes one bookmaker's pricing across a batch.
// Margin statistics cover only records where the margin is defined.
type SourceComparison struct {
	Source    string  `json:"source"`
	Records   int     `json:"records"`
	AvgMargin float64 `json:"avg_margin"`
	MinMargin float64 `json:"min_margin"`
	MaxMargin float64 `json:"max_margin"`
}

// Report is the full output of one aggregation pass.
type Report struct {
	RunID             string                 `json:"run_id"`
	GeneratedAt       time.Time              `json:"generated_at"`
	TotalMatches      int                    `json:"total_matches"`
	DroppedRecords    int                    `json:"dropped_records"`
	Sources           []string               `json:"sources"`
	Tournaments       []string               `json:"tournaments"`
	BestOdds          []BestOdds             `json:"best_odds"`
	Opportunities     []ArbitrageOpportunity `json:"opportunities"`
	OpportunityCount  int                    `json:"opportunity_count"`
	ValueBets         []ValueBet             `json:"value_bets"`
	ValueBetCount     int                    `json:"value_bet_count"`
	SourceComparisons []SourceComparison     `json:"source_comparisons"`
}
