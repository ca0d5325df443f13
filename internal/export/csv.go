package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// CSVWriter renders snapshots as CSV files.
type CSVWriter struct {
	opts   Options
	logger *slog.Logger
}

// NewCSVWriter creates a CSVWriter for opts.
func NewCSVWriter(opts Options, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		opts:   opts,
		logger: logger.With(slog.String("exporter", "csv")),
	}
}

// Write renders the snapshot to a CSV file in the output directory. In
// append mode rows merge into the existing file, keyed on
// (player_a, player_b, source, captured_at) with the newer row winning.
func (w *CSVWriter) Write(snap domain.Snapshot) (string, error) {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}

	path := filepath.Join(w.opts.Dir, w.opts.filename(snap.Report.GeneratedAt, ".csv"))
	header := columns(w.opts.Calculations)

	rows := make([][]string, 0, len(snap.Records))
	for _, m := range snap.Records {
		rows = append(rows, w.row(m))
	}

	if w.opts.Append {
		merged, err := w.mergeExisting(path, header, rows)
		if err != nil {
			return "", err
		}
		rows = merged
	}

	if err := writeCSV(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}

// row renders one record in the column order of columns().
func (w *CSVWriter) row(m domain.EnrichedMatch) []string {
	row := []string{
		m.CapturedAt.UTC().Format(time.RFC3339),
		m.SourceName,
		m.Tournament,
		m.PlayerA,
		m.PlayerB,
		formatOdds(m.OddsA),
		formatOdds(m.OddsB),
	}
	if w.opts.Calculations {
		row = append(row,
			formatMetric(m.ImpliedProbA),
			formatMetric(m.ImpliedProbB),
			formatMetric(m.Margin),
		)
	}
	return append(row, m.MatchDate, m.MatchTime, m.SourceURL)
}

// mergeExisting combines the rows already in path with the new rows.
// Existing rows not superseded by a new key keep their order and come
// first; new rows follow. A header mismatch (calculations toggled between
// runs) discards the old file rather than mixing schemas.
func (w *CSVWriter) mergeExisting(path string, header []string, newRows [][]string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return newRows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("export: open existing csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: read existing csv: %w", err)
	}
	if len(records) == 0 {
		return newRows, nil
	}
	if !slices.Equal(records[0], header) {
		w.logger.Warn("existing csv has a different column set, overwriting",
			slog.String("path", path),
		)
		return newRows, nil
	}

	seen := make(map[string]bool, len(newRows))
	for _, row := range newRows {
		seen[rowKey(header, row)] = true
	}

	merged := make([][]string, 0, len(records)-1+len(newRows))
	for _, row := range records[1:] {
		if !seen[rowKey(header, row)] {
			merged = append(merged, row)
		}
	}
	return append(merged, newRows...), nil
}

// rowKey builds the dedupe key from the identifying columns.
func rowKey(header, row []string) string {
	var key string
	for _, col := range []string{"player_a", "player_b", "source", "captured_at"} {
		if i := slices.Index(header, col); i >= 0 && i < len(row) {
			key += row[i] + "\x1f"
		}
	}
	return key
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: write csv rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}
