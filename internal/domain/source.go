package domain

import "context"

// Source produces raw match records from one bookmaker or aggregator.
// Implementations return whatever they could fetch; callers sanitize and
// validate before use.
type Source interface {
	Name() string
	FetchMatches(ctx context.Context) ([]MatchRecord, error)
}
