package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

const (
	matchSheet   = "Matches"
	summarySheet = "Summary"

	maxColumnWidth = 50
)

// ExcelWriter renders snapshots as styled Excel workbooks.
type ExcelWriter struct {
	opts   Options
	logger *slog.Logger
}

// NewExcelWriter creates an ExcelWriter for opts.
func NewExcelWriter(opts Options, logger *slog.Logger) *ExcelWriter {
	return &ExcelWriter{
		opts:   opts,
		logger: logger.With(slog.String("exporter", "excel")),
	}
}

// Write renders the snapshot into an .xlsx workbook: a "Matches" sheet with
// the shared column layout and, when enabled, a "Summary" sheet of batch
// statistics. Styling failures degrade to an unstyled workbook rather than
// failing the export.
func (w *ExcelWriter) Write(snap domain.Snapshot) (string, error) {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}
	path := filepath.Join(w.opts.Dir, w.opts.filename(snap.Report.GeneratedAt, ".xlsx"))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", matchSheet); err != nil {
		return "", fmt.Errorf("export: rename sheet: %w", err)
	}

	header := columns(w.opts.Calculations)
	table := [][]string{header}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(matchSheet, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}

	for i, m := range snap.Records {
		row := w.excelRow(m)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(matchSheet, cell, &row); err != nil {
			return "", fmt.Errorf("export: write row: %w", err)
		}
		table = append(table, stringifyRow(row))
	}

	if err := w.styleSheet(f, matchSheet, table); err != nil {
		w.logger.Warn("sheet styling failed", slog.String("error", err.Error()))
	}

	if w.opts.Summary {
		if err := w.writeSummary(f, snap); err != nil {
			w.logger.Warn("summary sheet failed", slog.String("error", err.Error()))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export: save workbook: %w", err)
	}
	return path, nil
}

// excelRow renders one record with numeric cells kept numeric so the
// workbook can be aggregated directly. Undefined metrics stay empty.
func (w *ExcelWriter) excelRow(m domain.EnrichedMatch) []any {
	row := []any{
		m.CapturedAt.UTC().Format(time.RFC3339),
		m.SourceName,
		m.Tournament,
		m.PlayerA,
		m.PlayerB,
		oddsmath.Round2(m.OddsA),
		oddsmath.Round2(m.OddsB),
	}
	if w.opts.Calculations {
		row = append(row,
			metricCell(m.ImpliedProbA),
			metricCell(m.ImpliedProbB),
			metricCell(m.Margin),
		)
	}
	return append(row, m.MatchDate, m.MatchTime, m.SourceURL)
}

// writeSummary appends the summary sheet of Metric/Value rows.
func (w *ExcelWriter) writeSummary(f *excelize.File, snap domain.Snapshot) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	header := []any{"Metric", "Value"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	rows := summaryRows(snap)
	table := [][]string{{"Metric", "Value"}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
		table = append(table, stringifyRow(row))
	}

	return w.styleSheet(f, summarySheet, table)
}

// summaryRows computes the Metric/Value pairs for the summary sheet. Odds
// and margin statistics skip undefined (zero) values.
func summaryRows(snap domain.Snapshot) [][]any {
	report := snap.Report
	rows := [][]any{
		{"Generated At", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Run ID", report.RunID},
		{"Total Matches", report.TotalMatches},
		{"Records", len(snap.Records)},
		{"Unique Tournaments", len(report.Tournaments)},
		{"Sources", len(report.Sources)},
	}

	var oddsSum, oddsMin, oddsMax float64
	oddsN := 0
	for _, m := range snap.Records {
		for _, o := range [2]float64{m.OddsA, m.OddsB} {
			if o <= 0 {
				continue
			}
			if oddsN == 0 || o < oddsMin {
				oddsMin = o
			}
			if o > oddsMax {
				oddsMax = o
			}
			oddsSum += o
			oddsN++
		}
	}
	if oddsN > 0 {
		rows = append(rows,
			[]any{"Average Odds", oddsmath.Round2(oddsSum / float64(oddsN))},
			[]any{"Min Odds", oddsmath.Round2(oddsMin)},
			[]any{"Max Odds", oddsmath.Round2(oddsMax)},
		)
	}

	var marginSum, marginMin, marginMax float64
	marginN := 0
	for _, m := range snap.Records {
		if m.Margin == 0 {
			continue
		}
		if marginN == 0 || m.Margin < marginMin {
			marginMin = m.Margin
		}
		if m.Margin > marginMax {
			marginMax = m.Margin
		}
		marginSum += m.Margin
		marginN++
	}
	if marginN > 0 {
		rows = append(rows,
			[]any{"Average Margin (%)", oddsmath.Round2(marginSum / float64(marginN))},
			[]any{"Min Margin (%)", oddsmath.Round2(marginMin)},
			[]any{"Max Margin (%)", oddsmath.Round2(marginMax)},
		)
	}

	rows = append(rows,
		[]any{"Arbitrage Opportunities", report.OpportunityCount},
		[]any{"Value Bets", report.ValueBetCount},
		[]any{"Dropped Records", report.DroppedRecords},
	)

	counts := make(map[string]int, len(report.Sources))
	for _, m := range snap.Records {
		counts[m.SourceName]++
	}
	for _, src := range report.Sources {
		rows = append(rows, []any{"Records: " + src, counts[src]})
	}
	return rows
}

// styleSheet applies the header style, freezes the top row and sizes the
// columns to their content.
func (w *ExcelWriter) styleSheet(f *excelize.File, sheet string, table [][]string) error {
	if len(table) == 0 {
		return nil
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	lastHeaderCell, err := excelize.CoordinatesToCellName(len(table[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeaderCell, styleID); err != nil {
		return err
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	widths := make([]int, len(table[0]))
	for _, row := range table {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(width+2, maxColumnWidth))); err != nil {
			return err
		}
	}
	return nil
}

// metricCell leaves undefined metrics as empty cells.
func metricCell(v float64) any {
	if v == 0 {
		return nil
	}
	return oddsmath.Round2(v)
}

// stringifyRow renders cells as strings for column width calculation.
func stringifyRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			out[i] = strconv.Itoa(t)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}
