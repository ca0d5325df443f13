package domain

// MatchupKey identifies a matchup independent of player order. It is the
// two normalized player names sorted lexicographically and joined with " | ".
type MatchupKey string

// MatchupGroup collects every record reported for one matchup.
// CanonicalA sorts before CanonicalB; records may list the players in
// either order.
type MatchupGroup struct {
	Key        MatchupKey    `json:"key"`
	CanonicalA string        `json:"player_a"`
	CanonicalB string        `json:"player_b"`
	Records    []MatchRecord `json:"records"`
}

// BestOdds holds the highest odds offered per canonical outcome across a
// group, with the source that offered each. SourceA and SourceB may be the
// same bookmaker.
type BestOdds struct {
	Key        MatchupKey `json:"key"`
	PlayerA    string     `json:"player_a"`
	PlayerB    string     `json:"player_b"`
	OddsA      float64    `json:"odds_a"`
	SourceA    string     `json:"source_a"`
	OddsB      float64    `json:"odds_b"`
	SourceB    string     `json:"source_b"`
	Tournament string     `json:"tournament"`
	MatchDate  string     `json:"match_date,omitempty"`
	MatchTime  string     `json:"match_time,omitempty"`
}
