// Package service sits between the HTTP handlers and the snapshot store.
// Every query reads the latest aggregation snapshot and applies the
// caller's filters; the service never reaches back into the sources.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/courtedge/courtbot/internal/comparator"
	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

// MatchFilter narrows the enriched match listing. Zero values leave the
// corresponding dimension unfiltered.
type MatchFilter struct {
	// Tournament keeps records whose tournament contains this string,
	// case-insensitive.
	Tournament string

	// Source keeps records from this bookmaker, case-insensitive exact.
	Source string

	// MinOdds keeps records where at least one side's odds reach this
	// value.
	MinOdds float64

	// MaxMargin keeps records whose margin is defined and at most this
	// value. Only applied when positive.
	MaxMargin float64

	// Limit caps the result. Zero or negative returns everything.
	Limit int
}

// TournamentCount pairs a tournament name with its record count in the
// current snapshot.
type TournamentCount struct {
	Name    string `json:"name"`
	Matches int    `json:"matches"`
}

// Stats summarizes the current snapshot for the stats endpoint. Margin
// statistics cover only records with a defined margin.
type Stats struct {
	TotalMatches int               `json:"total_matches"`
	Sources      int               `json:"unique_sources"`
	Tournaments  int               `json:"unique_tournaments"`
	AvgOdds      float64           `json:"avg_odds"`
	AvgMargin    float64           `json:"avg_margin"`
	MinMargin    float64           `json:"min_margin"`
	MaxMargin    float64           `json:"max_margin"`
	BestValue    []domain.ValueBet `json:"best_value"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// ReportService answers read queries against the latest snapshot.
type ReportService struct {
	store  domain.SnapshotStore
	logger *slog.Logger
}

// NewReportService creates a ReportService backed by the given store.
func NewReportService(store domain.SnapshotStore, logger *slog.Logger) *ReportService {
	return &ReportService{
		store:  store,
		logger: logger.With(slog.String("component", "report_service")),
	}
}

// Snapshot returns the latest snapshot. It returns ErrNoSnapshot until the
// first aggregation pass completes.
func (s *ReportService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("report_service: latest snapshot: %w", err)
	}
	return snap, nil
}

// Report returns the latest aggregation report.
func (s *ReportService) Report(ctx context.Context) (domain.Report, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	return snap.Report, nil
}

// Matches returns the enriched records matching the filter, in snapshot
// order.
func (s *ReportService) Matches(ctx context.Context, filter MatchFilter) ([]domain.EnrichedMatch, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedMatch, 0, len(snap.Records))
	for _, m := range snap.Records {
		if filter.Tournament != "" && !containsFold(m.Tournament, filter.Tournament) {
			continue
		}
		if filter.Source != "" && !strings.EqualFold(m.SourceName, filter.Source) {
			continue
		}
		if filter.MinOdds > 0 && m.OddsA < filter.MinOdds && m.OddsB < filter.MinOdds {
			continue
		}
		if filter.MaxMargin > 0 {
			// Margin 0 means undefined; an undefined margin never
			// satisfies a margin cap.
			if m.Margin == 0 || m.Margin > filter.MaxMargin {
				continue
			}
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Tournaments returns every distinct tournament in the snapshot with its
// record count, alphabetical.
func (s *ReportService) Tournaments(ctx context.Context) ([]TournamentCount, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range snap.Records {
		counts[m.Tournament]++
	}

	out := make([]TournamentCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TournamentCount{Name: name, Matches: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PlayerMatches returns every record where either player's name contains
// name, case-insensitive. It returns ErrNotFound when nothing matches.
func (s *ReportService) PlayerMatches(ctx context.Context, name string) ([]domain.EnrichedMatch, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedMatch, 0)
	for _, m := range snap.Records {
		if containsFold(m.PlayerA, name) || containsFold(m.PlayerB, name) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("report_service: player %q: %w", name, domain.ErrNotFound)
	}
	return out, nil
}

// Stats computes aggregate statistics over the snapshot. Undefined margins
// are excluded from the margin figures rather than dragging them toward 0.
func (s *ReportService) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalMatches: snap.Report.TotalMatches,
		Sources:      len(snap.Report.Sources),
		Tournaments:  len(snap.Report.Tournaments),
		GeneratedAt:  snap.Report.GeneratedAt,
	}

	var oddsSum float64
	var oddsN int
	var marginSum, marginMin, marginMax float64
	var marginN int
	for _, m := range snap.Records {
		if m.OddsA > 0 {
			oddsSum += m.OddsA
			oddsN++
		}
		if m.OddsB > 0 {
			oddsSum += m.OddsB
			oddsN++
		}
		if m.Margin == 0 {
			continue
		}
		if marginN == 0 || m.Margin < marginMin {
			marginMin = m.Margin
		}
		if marginN == 0 || m.Margin > marginMax {
			marginMax = m.Margin
		}
		marginSum += m.Margin
		marginN++
	}
	if oddsN > 0 {
		st.AvgOdds = oddsmath.Round2(oddsSum / float64(oddsN))
	}
	if marginN > 0 {
		st.AvgMargin = oddsmath.Round2(marginSum / float64(marginN))
		st.MinMargin = oddsmath.Round2(marginMin)
		st.MaxMargin = oddsmath.Round2(marginMax)
	}

	st.BestValue = comparator.FindValueBets(records(snap), 100, 5)
	return st, nil
}

// ValueBets returns records with a defined margin strictly below maxMargin,
// best value first.
func (s *ReportService) ValueBets(ctx context.Context, maxMargin float64, limit int) ([]domain.ValueBet, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return comparator.FindValueBets(records(snap), maxMargin, limit), nil
}

// Arbitrage returns the snapshot's opportunities at or above minProfit,
// keeping the report's profit-descending order.
func (s *ReportService) Arbitrage(ctx context.Context, minProfit float64) ([]domain.ArbitrageOpportunity, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ArbitrageOpportunity, 0, len(snap.Report.Opportunities))
	for _, op := range snap.Report.Opportunities {
		if op.ProfitPct >= minProfit {
			out = append(out, op)
		}
	}
	return out, nil
}

// records strips the enrichment layer for helpers that operate on raw
// match records.
func records(snap domain.Snapshot) []domain.MatchRecord {
	recs := make([]domain.MatchRecord, len(snap.Records))
	for i, m := range snap.Records {
		recs[i] = m.MatchRecord
	}
	return recs
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
