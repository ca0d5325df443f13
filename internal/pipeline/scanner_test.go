package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtedge/courtbot/internal/comparator"
	"github.com/courtedge/courtbot/internal/domain"
)

type stubStore struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	err   error
}

func (s *stubStore) Put(_ context.Context, snap domain.Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return nil
}

func (s *stubStore) Latest(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snaps) == 0 {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	return s.snaps[len(s.snaps)-1], nil
}

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func (s *stubStore) last(t *testing.T) domain.Snapshot {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snaps) == 0 {
		t.Fatal("no snapshot stored")
	}
	return s.snaps[len(s.snaps)-1]
}

type stubAlerts struct {
	mu       sync.Mutex
	ops      []domain.ArbitrageOpportunity
	failures []string
}

func (a *stubAlerts) OpportunityDetected(_ context.Context, op domain.ArbitrageOpportunity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops = append(a.ops, op)
}

func (a *stubAlerts) ScanFailed(_ context.Context, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, reason)
}

type stubExporter struct {
	snaps []domain.Snapshot
	err   error
}

func (e *stubExporter) ExportSnapshot(_ context.Context, snap domain.Snapshot) error {
	if e.err != nil {
		return e.err
	}
	e.snaps = append(e.snaps, snap)
	return nil
}

type stubLocker struct {
	held     bool
	unlocked int
}

func (l *stubLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	if l.held {
		return nil, domain.ErrLockHeld
	}
	return func() { l.unlocked++ }, nil
}

// arbSource holds records where the cross-book best odds (2.10/2.20) form
// a 7.44% arbitrage, plus one record that fails validation.
func arbSource() *stubSource {
	return &stubSource{
		name: "demo",
		records: []domain.MatchRecord{
			record("book-a", "Carlos Alcaraz", "Jannik Sinner", 2.10, 1.60),
			record("book-b", "Carlos Alcaraz", "Jannik Sinner", 1.65, 2.20),
			record("book-a", "", "Gauff C.", 1.50, 2.50),
		},
	}
}

func newTestScanner(src domain.Source, store *stubStore, locker domain.ScanLocker, alerts AlertSink, exporter SnapshotExporter) *Scanner {
	fetcher := NewFetcher([]domain.Source{src}, 0, discardLogger())
	return NewScanner(fetcher, store, locker, alerts, exporter, comparator.Options{}, 0, discardLogger())
}

func TestScannerRunStoresSnapshot(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	s := newTestScanner(arbSource(), store, nil, nil, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := store.last(t)
	if snap.Report.TotalMatches != 2 {
		t.Errorf("TotalMatches = %d, want 2", snap.Report.TotalMatches)
	}
	if snap.Report.DroppedRecords != 1 {
		t.Errorf("DroppedRecords = %d, want 1", snap.Report.DroppedRecords)
	}
	if len(snap.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(snap.Records))
	}
	if snap.Records[0].ImpliedProbA == 0 {
		t.Error("Records[0].ImpliedProbA = 0, want enriched value")
	}
	if len(snap.FetchErrors) != 0 {
		t.Errorf("FetchErrors = %v, want none", snap.FetchErrors)
	}
	if snap.Report.OpportunityCount != 1 {
		t.Errorf("OpportunityCount = %d, want 1", snap.Report.OpportunityCount)
	}
}

func TestScannerRunNotifiesOpportunities(t *testing.T) {
	t.Parallel()

	alerts := &stubAlerts{}
	s := newTestScanner(arbSource(), &stubStore{}, nil, alerts, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(alerts.ops) != 1 {
		t.Fatalf("len(alerts.ops) = %d, want 1", len(alerts.ops))
	}
	op := alerts.ops[0]
	if op.OddsA != 2.10 || op.OddsB != 2.20 {
		t.Errorf("opportunity odds = (%v, %v), want (2.10, 2.20)", op.OddsA, op.OddsB)
	}
	if len(alerts.failures) != 0 {
		t.Errorf("failures = %v, want none", alerts.failures)
	}
}

func TestScannerRunNoRecords(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	alerts := &stubAlerts{}
	src := &stubSource{name: "down", err: errors.New("unreachable")}
	s := newTestScanner(src, store, nil, alerts, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if store.count() != 0 {
		t.Errorf("snapshots stored = %d, want 0", store.count())
	}
	if len(alerts.failures) != 1 {
		t.Errorf("len(failures) = %d, want 1", len(alerts.failures))
	}
}

func TestScannerRunAllRecordsInvalid(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	alerts := &stubAlerts{}
	src := &stubSource{
		name: "junk",
		records: []domain.MatchRecord{
			record("junk", "", "Two T.", 1.8, 2.0),
			record("junk", "One O.", "Two T.", 0, 2.0),
		},
	}
	s := newTestScanner(src, store, nil, alerts, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if store.count() != 0 {
		t.Errorf("snapshots stored = %d, want 0", store.count())
	}
	if len(alerts.failures) != 1 {
		t.Errorf("len(failures) = %d, want 1", len(alerts.failures))
	}
}

func TestScannerRunSkipsWhenLockHeld(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	src := arbSource()
	s := newTestScanner(src, store, &stubLocker{held: true}, nil, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil for held lock", err)
	}
	if src.callCount() != 0 {
		t.Errorf("source calls = %d, want 0", src.callCount())
	}
	if store.count() != 0 {
		t.Errorf("snapshots stored = %d, want 0", store.count())
	}
}

func TestScannerRunReleasesLock(t *testing.T) {
	t.Parallel()

	locker := &stubLocker{}
	s := newTestScanner(arbSource(), &stubStore{}, locker, nil, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if locker.unlocked != 1 {
		t.Errorf("unlock calls = %d, want 1", locker.unlocked)
	}
}

func TestScannerRunExportFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	exporter := &stubExporter{err: errors.New("disk full")}
	s := newTestScanner(arbSource(), store, nil, nil, exporter)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil when only export fails", err)
	}
	if store.count() != 1 {
		t.Errorf("snapshots stored = %d, want 1", store.count())
	}
}

func TestScannerRunExportsSnapshot(t *testing.T) {
	t.Parallel()

	exporter := &stubExporter{}
	s := newTestScanner(arbSource(), &stubStore{}, nil, nil, exporter)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(exporter.snaps) != 1 {
		t.Fatalf("len(exporter.snaps) = %d, want 1", len(exporter.snaps))
	}
	if exporter.snaps[0].Report.TotalMatches != 2 {
		t.Errorf("exported TotalMatches = %d, want 2", exporter.snaps[0].Report.TotalMatches)
	}
}

func TestScannerRunStoreFailure(t *testing.T) {
	t.Parallel()

	alerts := &stubAlerts{}
	s := newTestScanner(arbSource(), &stubStore{err: errors.New("redis down")}, nil, alerts, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	// Store failures are infrastructure trouble, not a failed scan.
	if len(alerts.failures) != 0 {
		t.Errorf("failures = %v, want none", alerts.failures)
	}
}

func TestScannerRunLoopTriggerAndShutdown(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	s := newTestScanner(arbSource(), store, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	trigger := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.RunLoop(ctx, time.Hour, trigger)
	}()

	waitFor(t, func() bool { return store.count() == 1 })
	trigger <- struct{}{}
	waitFor(t, func() bool { return store.count() == 2 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunLoop() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunLoop did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
