// Package pipeline runs aggregation passes: fan out over the configured
// odds sources, clean whatever came back, build a report, and hand the
// resulting snapshot to its consumers.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtedge/courtbot/internal/domain"
)

// FetchResult is the outcome of one pass over every source. Failures are
// partial: a source that errored contributes nothing to Records and lands
// in Errors keyed by source name.
type FetchResult struct {
	Records []domain.MatchRecord
	Errors  map[string]string
}

// Fetcher queries odds sources concurrently.
type Fetcher struct {
	sources     []domain.Source
	concurrency int
	logger      *slog.Logger
}

// NewFetcher creates a fetcher. Concurrency of zero or less runs every
// source at once.
func NewFetcher(sources []domain.Source, concurrency int, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		sources:     sources,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fetch queries every source and merges their records in source order. A
// failing source logs a warning and records its error string; the pass
// always proceeds with whatever arrived.
func (f *Fetcher) Fetch(ctx context.Context) FetchResult {
	result := FetchResult{Errors: make(map[string]string)}
	perSource := make([][]domain.MatchRecord, len(f.sources))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}

	for i, src := range f.sources {
		g.Go(func() error {
			started := time.Now()
			records, err := src.FetchMatches(ctx)
			if err != nil {
				f.logger.Warn("source fetch failed",
					slog.String("source", src.Name()),
					slog.String("error", err.Error()))
				mu.Lock()
				result.Errors[src.Name()] = err.Error()
				mu.Unlock()
				return nil
			}
			f.logger.Info("source fetch complete",
				slog.String("source", src.Name()),
				slog.Int("records", len(records)),
				slog.Duration("elapsed", time.Since(started)))
			perSource[i] = records
			return nil
		})
	}
	// Goroutines swallow their errors, so Wait only synchronizes.
	_ = g.Wait()

	for _, records := range perSource {
		result.Records = append(result.Records, records...)
	}
	return result
}
