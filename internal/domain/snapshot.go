package domain

import (
	"context"
	"time"
)

// Snapshot is the state produced by one aggregation pass: the report plus
// the enriched records it was built from. The serve layer answers every
// query from the latest snapshot.
type Snapshot struct {
	Report      Report            `json:"report"`
	Records     []EnrichedMatch   `json:"records"`
	FetchErrors map[string]string `json:"fetch_errors,omitempty"`
}

// SnapshotStore holds the latest snapshot. Latest returns ErrNoSnapshot
// when no pass has completed yet or the stored snapshot expired.
type SnapshotStore interface {
	Put(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
}

// ScanLocker serializes aggregation passes across processes. Acquire
// returns ErrLockHeld when another holder owns the key.
type ScanLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
