package domain

import "time"

// MatchRecord is one bookmaker's report of a single tennis match: two players
// and decimal odds for each to win. Records arrive from source adapters and
// must pass ingest validation before they enter the aggregation core.
type MatchRecord struct {
	CapturedAt time.Time `json:"captured_at"`
	SourceName string    `json:"source" validate:"required"`
	Tournament string    `json:"tournament"`
	PlayerA    string    `json:"player_a" validate:"required"`
	PlayerB    string    `json:"player_b" validate:"required"`
	OddsA      float64   `json:"odds_a" validate:"gt=0"`
	OddsB      float64   `json:"odds_b" validate:"gt=0"`
	MatchDate  string    `json:"match_date,omitempty"`
	MatchTime  string    `json:"match_time,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
}

// DerivedMetrics carries per-record market math. A zero value means the
// metric is undefined (invalid odds) and must stay out of aggregates.
type DerivedMetrics struct {
	ImpliedProbA float64 `json:"implied_prob_a"`
	ImpliedProbB float64 `json:"implied_prob_b"`
	Margin       float64 `json:"margin"`
}

// EnrichedMatch is a MatchRecord with its market metrics attached, the shape
// served to API consumers and exporters.
type EnrichedMatch struct {
	MatchRecord
	DerivedMetrics
}
