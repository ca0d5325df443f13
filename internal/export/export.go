// Package export writes completed snapshots to local CSV and Excel files
// and optionally mirrors them to object storage. Both formats share the
// same column layout so downstream tooling can consume either.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatBoth  = "both"
)

// Options configures one exporter set.
type Options struct {
	// Dir is the local output directory, created on first write.
	Dir string

	// Format selects csv, excel or both.
	Format string

	// Filename overrides the timestamped default basename. The format
	// extension is appended when missing.
	Filename string

	// Append merges new rows into the existing CSV instead of overwriting,
	// deduplicating on (player_a, player_b, source, captured_at) and keeping
	// the newer row. CSV only.
	Append bool

	// Summary adds the summary sheet to Excel workbooks.
	Summary bool

	// Calculations includes the implied probability and margin columns.
	Calculations bool
}

// filename returns the output basename for ext. Append mode uses a per-day
// name so successive passes accumulate into one file; otherwise each pass
// gets its own timestamped file.
func (o Options) filename(generatedAt time.Time, ext string) string {
	if o.Filename != "" {
		if filepath.Ext(o.Filename) == "" {
			return o.Filename + ext
		}
		return o.Filename
	}
	if o.Append && ext == ".csv" {
		return "tennis_odds_" + generatedAt.UTC().Format("2006-01-02") + ext
	}
	return "tennis_odds_" + generatedAt.UTC().Format("20060102_150405") + ext
}

// Writer renders a snapshot into one file format and returns the path it
// wrote.
type Writer interface {
	Write(snap domain.Snapshot) (string, error)
}

// ForFormat builds the writer set for the configured format.
func ForFormat(opts Options, logger *slog.Logger) ([]Writer, error) {
	switch opts.Format {
	case FormatCSV, "":
		return []Writer{NewCSVWriter(opts, logger)}, nil
	case FormatExcel:
		return []Writer{NewExcelWriter(opts, logger)}, nil
	case FormatBoth:
		return []Writer{NewCSVWriter(opts, logger), NewExcelWriter(opts, logger)}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q", opts.Format)
	}
}

// Manager fans a snapshot out to every configured writer and mirrors the
// written files to object storage when an uploader is attached. It is the
// exporter the scan pipeline drives after each pass.
type Manager struct {
	writers  []Writer
	uploader *S3Uploader
	logger   *slog.Logger
}

// NewManager builds a Manager for opts. uploader may be nil.
func NewManager(opts Options, uploader *S3Uploader, logger *slog.Logger) (*Manager, error) {
	writers, err := ForFormat(opts, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		writers:  writers,
		uploader: uploader,
		logger:   logger.With(slog.String("component", "export")),
	}, nil
}

// Export writes the snapshot in every configured format and returns the
// paths written. A snapshot with no records is skipped without error.
func (m *Manager) Export(ctx context.Context, snap domain.Snapshot) ([]string, error) {
	if len(snap.Records) == 0 {
		m.logger.Warn("no records to export, skipping")
		return nil, nil
	}

	var (
		paths []string
		errs  []error
	)
	for _, w := range m.writers {
		path, err := w.Write(snap)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
		m.logger.Info("snapshot exported",
			slog.String("path", path),
			slog.Int("records", len(snap.Records)),
		)
	}

	if m.uploader != nil {
		for _, path := range paths {
			m.uploader.Upload(ctx, path)
		}
	}

	return paths, errors.Join(errs...)
}

// ExportSnapshot adapts Export to the pipeline's exporter contract.
func (m *Manager) ExportSnapshot(ctx context.Context, snap domain.Snapshot) error {
	_, err := m.Export(ctx, snap)
	return err
}

// columns returns the export column set. The derived metric columns are
// present only when calculations are enabled.
func columns(calculations bool) []string {
	cols := []string{
		"captured_at", "source", "tournament",
		"player_a", "player_b",
		"odds_a", "odds_b",
	}
	if calculations {
		cols = append(cols, "implied_prob_a", "implied_prob_b", "margin")
	}
	return append(cols, "match_date", "match_time", "source_url")
}

// formatOdds renders odds with two decimals.
func formatOdds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatMetric renders a derived metric, leaving undefined (zero) values
// empty so they stay out of spreadsheet aggregates.
func formatMetric(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
