package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

func snapshotWithRun(runID string) domain.Snapshot {
	return domain.Snapshot{
		Report: domain.Report{RunID: runID, TotalMatches: 3},
	}
}

func TestLatestBeforeFirstPut(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(0)
	if _, err := store.Latest(context.Background()); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("Latest() error = %v, want ErrNoSnapshot", err)
	}
}

func TestPutThenLatest(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(0)
	if err := store.Put(context.Background(), snapshotWithRun("run-1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.Report.RunID != "run-1" {
		t.Errorf("RunID = %q, want %q", got.Report.RunID, "run-1")
	}
	if got.Report.TotalMatches != 3 {
		t.Errorf("TotalMatches = %d, want 3", got.Report.TotalMatches)
	}
}

func TestPutReplacesPrevious(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(0)
	ctx := context.Background()
	if err := store.Put(ctx, snapshotWithRun("run-1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, snapshotWithRun("run-2")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.Report.RunID != "run-2" {
		t.Errorf("RunID = %q, want %q", got.Report.RunID, "run-2")
	}
}

func TestLatestAfterTTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(10 * time.Millisecond)
	ctx := context.Background()
	if err := store.Put(ctx, snapshotWithRun("run-1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if _, err := store.Latest(ctx); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("Latest() error = %v, want ErrNoSnapshot", err)
	}

	// A fresh Put revives the store.
	if err := store.Put(ctx, snapshotWithRun("run-2")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Latest(ctx); err != nil {
		t.Errorf("Latest() after fresh Put error = %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Put(ctx, snapshotWithRun("run"))
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Latest(ctx)
		}()
	}
	wg.Wait()

	if _, err := store.Latest(ctx); err != nil {
		t.Errorf("Latest() after concurrent access error = %v", err)
	}
}
