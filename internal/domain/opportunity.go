package domain

import "time"

// ArbitrageOpportunity is a matchup where backing both outcomes at the best
// available odds guarantees a profit. Stakes are percentages of the total
// bankroll and sum to 100.
type ArbitrageOpportunity struct {
	ID         string     `json:"id"`
	MatchupKey MatchupKey `json:"matchup_key"`
	PlayerA    string     `json:"player_a"`
	PlayerB    string     `json:"player_b"`
	Tournament string     `json:"tournament"`
	OddsA      float64    `json:"odds_a"`
	SourceA    string     `json:"source_a"`
	OddsB      float64    `json:"odds_b"`
	SourceB    string     `json:"source_b"`
	ProfitPct  float64    `json:"profit_pct"`
	StakeAPct  float64    `json:"stake_a_pct"`
	StakeBPct  float64    `json:"stake_b_pct"`
	DetectedAt time.Time  `json:"detected_at"`
}

// ValueBet is a single record whose bookmaker margin falls below a
// configured threshold. Lower margin means a better price for the bettor.
type ValueBet struct {
	Record MatchRecord `json:"record"`
	Margin float64     `json:"margin"`
}
