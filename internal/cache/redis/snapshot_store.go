package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtedge/courtbot/internal/domain"
)

// snapshotKey holds the latest snapshot as one JSON blob. Every pass
// overwrites it; history is the exporter's job, not the cache's.
const snapshotKey = "snapshot:latest"

// SnapshotStore shares the latest snapshot between processes, so a serve
// deployment can answer queries for scans run elsewhere.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store backed by the given client. A zero TTL
// keeps the stored snapshot until the next Put.
func NewSnapshotStore(c *Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{rdb: c.Underlying(), ttl: ttl}
}

// Put stores the snapshot as JSON under the snapshot key.
func (s *SnapshotStore) Put(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.Report.RunID, err)
	}
	if err := s.rdb.Set(ctx, snapshotKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: put snapshot %s: %w", snap.Report.RunID, err)
	}
	return nil
}

// Latest returns the stored snapshot. It returns ErrNoSnapshot when the
// key is missing or expired.
func (s *SnapshotStore) Latest(ctx context.Context) (domain.Snapshot, error) {
	data, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Snapshot{}, domain.ErrNoSnapshot
		}
		return domain.Snapshot{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return snap, nil
}
