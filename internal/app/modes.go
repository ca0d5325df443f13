package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtedge/courtbot/internal/comparator"
	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/notify"
	"github.com/courtedge/courtbot/internal/pipeline"
	"github.com/courtedge/courtbot/internal/server"
	"github.com/courtedge/courtbot/internal/server/handler"
	"github.com/courtedge/courtbot/internal/service"
)

// serverShutdownTimeout bounds the HTTP drain on shutdown.
const serverShutdownTimeout = 5 * time.Second

// ScanMode runs a single aggregation pass and exits. Exports run when
// enabled in the configuration.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode",
		slog.Any("sources", deps.SourceNames()),
	)

	scanner := a.buildScanner(deps, nil)
	if err := scanner.Run(ctx); err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	if a.opts.Summary {
		snap, err := deps.Store.Latest(ctx)
		if err != nil {
			return fmt.Errorf("scan mode: read snapshot for summary: %w", err)
		}
		printSummary(os.Stdout, snap.Report)
	}
	return nil
}

// ExportMode is a one-shot pass with file exports forced on; Wire attaches
// the exporter whenever the mode is export.
func (a *App) ExportMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting export mode")
	return a.ScanMode(ctx, deps)
}

// ServeMode runs the scan loop alongside the HTTP API and dashboard until
// the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")
	return a.serveLoop(ctx, deps)
}

// FullMode is serve mode with exports on every pass; Wire attaches the
// exporter whenever the mode is full.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")
	return a.serveLoop(ctx, deps)
}

// serveLoop starts the periodic scanner and, when enabled, the HTTP server.
// The scan trigger endpoint feeds the loop's trigger channel so an operator
// can request an immediate pass.
func (a *App) serveLoop(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	trigger := make(chan struct{}, 1)
	alerts := notify.NewAlerts(deps.Notifier, a.cfg.Notify.MinProfitPct, a.logger)
	scanner := a.buildScanner(deps, alerts)

	g.Go(func() error {
		return scanner.RunLoop(ctx, a.cfg.Scan.Interval.Duration, trigger)
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, trigger)
	}

	return g.Wait()
}

// buildScanner assembles the pipeline for the configured sources and
// comparison options. alerts may be nil for one-shot modes.
func (a *App) buildScanner(deps *Dependencies, alerts pipeline.AlertSink) *pipeline.Scanner {
	fetcher := pipeline.NewFetcher(deps.Sources, a.cfg.Scan.Concurrency, a.logger)

	opts := comparator.Options{
		MinProfitPct:      a.cfg.Scan.MinProfitPct,
		RequireTwoSources: a.cfg.Scan.RequireTwoSources,
		ValueBetMargin:    a.cfg.Scan.ValueMarginThreshold,
		SampleLimit:       a.cfg.Scan.TopN,
	}

	var exporter pipeline.SnapshotExporter
	if deps.Exporter != nil {
		exporter = deps.Exporter
	}

	return pipeline.NewScanner(
		fetcher,
		deps.Store,
		deps.Locker,
		alerts,
		exporter,
		opts,
		a.cfg.Scan.Interval.Duration,
		a.logger,
	)
}

// startHTTPServer adds the HTTP server and its shutdown watcher to the
// given errgroup. Handlers answer from the snapshot store through the
// report service; the scan trigger endpoint feeds trigger.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	trigger chan<- struct{},
) {
	reports := service.NewReportService(deps.Store, a.logger)

	srvCfg := server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}
	if deps.RateLimiter != nil && a.cfg.Server.RateLimitPerMin > 0 {
		srvCfg.RateLimiter = deps.RateLimiter
		srvCfg.RateLimitPerMin = a.cfg.Server.RateLimitPerMin
	}

	srv := server.NewServer(srvCfg, server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Status:    handler.NewStatusHandler(reports, a.cfg.Mode, deps.SourceNames(), a.logger),
		Matches:   handler.NewMatchHandler(reports, a.logger),
		Analysis:  handler.NewAnalysisHandler(reports, a.logger),
		Report:    handler.NewReportHandler(reports, a.logger),
		Scan:      handler.NewScanHandler(a.logger).WithTriggerChannel(trigger),
		Dashboard: handler.NewDashboardHandler(reports, a.cfg.Scan.Interval.Duration, a.logger),
	}, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// printSummary writes a human-readable digest of one report, the shape the
// -summary flag prints after a one-shot pass.
func printSummary(w io.Writer, report domain.Report) {
	fmt.Fprintf(w, "\n=== Odds Report %s ===\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Matches:       %d (dropped %d invalid)\n", report.TotalMatches, report.DroppedRecords)
	fmt.Fprintf(w, "Sources:       %d\n", len(report.Sources))
	fmt.Fprintf(w, "Tournaments:   %d\n", len(report.Tournaments))
	fmt.Fprintf(w, "Arbitrage:     %d\n", report.OpportunityCount)
	fmt.Fprintf(w, "Value bets:    %d\n", report.ValueBetCount)

	for _, op := range report.Opportunities {
		fmt.Fprintf(w, "  ARB %s vs %s: %.2f%% profit (%s @ %.2f / %s @ %.2f, stakes %.2f%%/%.2f%%)\n",
			op.PlayerA, op.PlayerB, op.ProfitPct,
			op.SourceA, op.OddsA, op.SourceB, op.OddsB,
			op.StakeAPct, op.StakeBPct)
	}
	for _, vb := range report.ValueBets {
		fmt.Fprintf(w, "  VALUE %s vs %s @ %s: margin %.2f%%\n",
			vb.Record.PlayerA, vb.Record.PlayerB, vb.Record.SourceName, vb.Margin)
	}
	for _, sc := range report.SourceComparisons {
		fmt.Fprintf(w, "  SOURCE %-12s %3d records, margin avg %.2f%% (min %.2f%%, max %.2f%%)\n",
			sc.Source, sc.Records, sc.AvgMargin, sc.MinMargin, sc.MaxMargin)
	}
	fmt.Fprintln(w)
}
