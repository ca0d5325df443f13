package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtedge/courtbot/internal/comparator"
	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/ingest"
)

// scanLockKey names the distributed lock that keeps concurrent deployments
// from running overlapping passes.
const scanLockKey = "scan"

// AlertSink receives scan outcomes for operator alerting. Implementations
// own their delivery failures; the scan never blocks on them.
type AlertSink interface {
	OpportunityDetected(ctx context.Context, op domain.ArbitrageOpportunity)
	ScanFailed(ctx context.Context, reason string)
}

// SnapshotExporter writes a completed snapshot to the configured formats.
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Scanner executes aggregation passes. Each pass fetches from every source,
// sanitizes and validates the records, assembles a report, publishes the
// snapshot, and fans qualifying opportunities out to the alert sink.
type Scanner struct {
	fetcher  *Fetcher
	store    domain.SnapshotStore
	locker   domain.ScanLocker
	alerts   AlertSink
	exporter SnapshotExporter
	opts     comparator.Options
	lockTTL  time.Duration
	logger   *slog.Logger
}

// NewScanner creates a scanner. Locker, alerts, and exporter may be nil.
func NewScanner(
	fetcher *Fetcher,
	store domain.SnapshotStore,
	locker domain.ScanLocker,
	alerts AlertSink,
	exporter SnapshotExporter,
	opts comparator.Options,
	lockTTL time.Duration,
	logger *slog.Logger,
) *Scanner {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &Scanner{
		fetcher:  fetcher,
		store:    store,
		locker:   locker,
		alerts:   alerts,
		exporter: exporter,
		opts:     opts,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// Run executes a single pass. A held scan lock skips the pass without
// error. A pass that produces no usable records fails and raises a
// scan-failed alert; store and export problems surface without one.
func (s *Scanner) Run(ctx context.Context) error {
	if s.locker != nil {
		unlock, err := s.locker.Acquire(ctx, scanLockKey, s.lockTTL)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			s.logger.Debug("scan lock held elsewhere, skipping pass")
			return nil
		case err != nil:
			s.logger.Warn("scan lock unavailable, proceeding unlocked",
				slog.String("error", err.Error()))
		default:
			defer unlock()
		}
	}

	started := time.Now()
	fetched := s.fetcher.Fetch(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fetched.Records) == 0 {
		err := fmt.Errorf("pipeline: no records from %d sources", len(s.fetcher.sources))
		s.scanFailed(ctx, err)
		return err
	}

	clean := make([]domain.MatchRecord, 0, len(fetched.Records))
	for _, rec := range fetched.Records {
		clean = append(clean, ingest.Sanitize(rec))
	}
	valid, dropped := ingest.Filter(s.logger, clean)
	if len(valid) == 0 {
		err := fmt.Errorf("pipeline: all %d fetched records failed validation", len(clean))
		s.scanFailed(ctx, err)
		return err
	}

	opts := s.opts
	opts.DroppedRecords = dropped
	report := comparator.BuildReport(valid, opts)

	snap := domain.Snapshot{
		Report:      report,
		Records:     comparator.Enrich(valid),
		FetchErrors: fetched.Errors,
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return fmt.Errorf("pipeline: store snapshot: %w", err)
	}

	if s.alerts != nil {
		for _, op := range report.Opportunities {
			s.alerts.OpportunityDetected(ctx, op)
		}
	}

	if s.exporter != nil {
		if err := s.exporter.ExportSnapshot(ctx, snap); err != nil {
			s.logger.Warn("snapshot export failed", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("scan complete",
		slog.String("run_id", report.RunID),
		slog.Int("matches", report.TotalMatches),
		slog.Int("dropped", dropped),
		slog.Int("opportunities", report.OpportunityCount),
		slog.Int("value_bets", report.ValueBetCount),
		slog.Duration("elapsed", time.Since(started)))
	return nil
}

// RunLoop runs a pass immediately, then on every tick and on every pull
// from trigger, until the context is cancelled. A nil trigger channel is
// valid and never fires.
func (s *Scanner) RunLoop(ctx context.Context, interval time.Duration, trigger <-chan struct{}) error {
	if err := s.Run(ctx); err != nil {
		s.logger.Error("scan failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error("scan failed", slog.String("error", err.Error()))
			}
		case <-trigger:
			s.logger.Info("manual scan triggered")
			if err := s.Run(ctx); err != nil {
				s.logger.Error("scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Scanner) scanFailed(ctx context.Context, err error) {
	if s.alerts != nil {
		s.alerts.ScanFailed(ctx, err.Error())
	}
}
