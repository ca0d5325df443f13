// Package memory provides the in-process snapshot store used when no
// shared cache is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// SnapshotStore keeps the latest snapshot in memory behind a RWMutex.
// A zero TTL keeps a stored snapshot until the next Put replaces it.
type SnapshotStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	snap     domain.Snapshot
	storedAt time.Time
	present  bool
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{ttl: ttl}
}

// Put replaces the stored snapshot.
func (s *SnapshotStore) Put(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.storedAt = time.Now()
	s.present = true
	return nil
}

// Latest returns the stored snapshot. It returns ErrNoSnapshot before the
// first Put and after the stored snapshot outlives the TTL.
func (s *SnapshotStore) Latest(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	if s.ttl > 0 && time.Since(s.storedAt) > s.ttl {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	return s.snap, nil
}
