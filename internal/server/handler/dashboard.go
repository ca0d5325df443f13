package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// dashboardValueBetLimit caps the value-bet table on the dashboard.
const dashboardValueBetLimit = 10

// DashboardHandler renders the HTML snapshot view.
type DashboardHandler struct {
	snapshots SnapshotService
	refresh   time.Duration
	logger    *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler. refresh controls the
// meta-refresh interval of the rendered page.
func NewDashboardHandler(snapshots SnapshotService, refresh time.Duration, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		snapshots: snapshots,
		refresh:   refresh,
		logger:    logHandler(logger, "dashboard"),
	}
}

// dashboardData is the template payload for one render.
type dashboardData struct {
	Empty         bool
	RefreshSec    int
	GeneratedAt   string
	RunID         string
	TotalMatches  int
	RecordCount   int
	SourceCount   int
	Opportunities []domain.ArbitrageOpportunity
	ValueBets     []domain.ValueBet
	Comparisons   []domain.SourceComparison
	FetchErrors   map[string]string
}

// Render serves the dashboard page. Before the first scan completes it
// renders a waiting banner instead of an error so the page can be left open.
// GET /dashboard
func (h *DashboardHandler) Render(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		RefreshSec: int(h.refresh.Seconds()),
	}
	if data.RefreshSec <= 0 {
		data.RefreshSec = 60
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	switch {
	case err == nil:
		bets := snap.Report.ValueBets
		if len(bets) > dashboardValueBetLimit {
			bets = bets[:dashboardValueBetLimit]
		}
		data.GeneratedAt = snap.Report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")
		data.RunID = snap.Report.RunID
		data.TotalMatches = snap.Report.TotalMatches
		data.RecordCount = len(snap.Records)
		data.SourceCount = len(snap.Report.Sources)
		data.Opportunities = snap.Report.Opportunities
		data.ValueBets = bets
		data.Comparisons = snap.Report.SourceComparisons
		data.FetchErrors = snap.FetchErrors
	case errors.Is(err, domain.ErrNoSnapshot):
		data.Empty = true
	default:
		h.logger.ErrorContext(r.Context(), "handler: dashboard snapshot lookup failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: dashboard render failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSec}}">
<title>Courtbot — Tennis Odds Dashboard</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f4f6f8; color: #1f2933; }
  header { background: #17314f; color: #fff; padding: 16px 24px; }
  header h1 { margin: 0; font-size: 20px; }
  header .meta { font-size: 12px; color: #b7c4d4; margin-top: 4px; }
  main { padding: 24px; max-width: 1100px; margin: 0 auto; }
  .cards { display: flex; gap: 16px; flex-wrap: wrap; margin-bottom: 24px; }
  .card { background: #fff; border-radius: 8px; padding: 16px 20px; min-width: 150px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  .card .num { font-size: 28px; font-weight: 600; }
  .card .label { font-size: 12px; color: #627084; text-transform: uppercase; }
  section { margin-bottom: 28px; }
  h2 { font-size: 15px; margin: 0 0 10px; color: #17314f; }
  table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  th { background: #17314f; color: #fff; text-align: left; font-size: 12px; padding: 8px 12px; }
  td { padding: 8px 12px; border-top: 1px solid #e5e9ef; font-size: 13px; }
  .profit { color: #0b8457; font-weight: 600; }
  .empty { background: #fff; border-radius: 8px; padding: 28px; text-align: center; color: #627084; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  .warn { color: #a94442; font-size: 12px; }
</style>
</head>
<body>
<header>
  <h1>Courtbot — Tennis Odds Dashboard</h1>
  {{if .Empty}}<div class="meta">waiting for the first scan to complete</div>
  {{else}}<div class="meta">run {{.RunID}} &middot; generated {{.GeneratedAt}}</div>{{end}}
</header>
<main>
{{if .Empty}}
  <div class="empty">No snapshot yet. This page refreshes every {{.RefreshSec}} seconds.</div>
{{else}}
  <div class="cards">
    <div class="card"><div class="num">{{.TotalMatches}}</div><div class="label">Matches</div></div>
    <div class="card"><div class="num">{{.RecordCount}}</div><div class="label">Records</div></div>
    <div class="card"><div class="num">{{.SourceCount}}</div><div class="label">Sources</div></div>
    <div class="card"><div class="num">{{len .Opportunities}}</div><div class="label">Arbitrage</div></div>
    <div class="card"><div class="num">{{len .ValueBets}}</div><div class="label">Value Bets</div></div>
  </div>

  <section>
    <h2>Arbitrage Opportunities</h2>
    {{if .Opportunities}}
    <table>
      <tr><th>Match</th><th>Tournament</th><th>Back A @</th><th>Back B @</th><th>Stakes</th><th>Profit</th></tr>
      {{range .Opportunities}}
      <tr>
        <td>{{.PlayerA}} vs {{.PlayerB}}</td>
        <td>{{.Tournament}}</td>
        <td>{{printf "%.2f" .OddsA}} ({{.SourceA}})</td>
        <td>{{printf "%.2f" .OddsB}} ({{.SourceB}})</td>
        <td>{{printf "%.2f" .StakeAPct}}% / {{printf "%.2f" .StakeBPct}}%</td>
        <td class="profit">{{printf "%.2f" .ProfitPct}}%</td>
      </tr>
      {{end}}
    </table>
    {{else}}<div class="empty">No opportunities in the latest snapshot.</div>{{end}}
  </section>

  <section>
    <h2>Best Value Bets</h2>
    {{if .ValueBets}}
    <table>
      <tr><th>Match</th><th>Source</th><th>Odds A</th><th>Odds B</th><th>Margin</th></tr>
      {{range .ValueBets}}
      <tr>
        <td>{{.Record.PlayerA}} vs {{.Record.PlayerB}}</td>
        <td>{{.Record.SourceName}}</td>
        <td>{{printf "%.2f" .Record.OddsA}}</td>
        <td>{{printf "%.2f" .Record.OddsB}}</td>
        <td>{{printf "%.2f" .Margin}}%</td>
      </tr>
      {{end}}
    </table>
    {{else}}<div class="empty">No value bets under the configured margin.</div>{{end}}
  </section>

  <section>
    <h2>Source Comparison</h2>
    {{if .Comparisons}}
    <table>
      <tr><th>Source</th><th>Records</th><th>Avg Margin</th><th>Min</th><th>Max</th></tr>
      {{range .Comparisons}}
      <tr>
        <td>{{.Source}}</td>
        <td>{{.Records}}</td>
        <td>{{printf "%.2f" .AvgMargin}}%</td>
        <td>{{printf "%.2f" .MinMargin}}%</td>
        <td>{{printf "%.2f" .MaxMargin}}%</td>
      </tr>
      {{end}}
    </table>
    {{else}}<div class="empty">No source statistics available.</div>{{end}}
  </section>

  {{if .FetchErrors}}
  <section>
    <h2>Fetch Errors</h2>
    <table>
      <tr><th>Source</th><th>Error</th></tr>
      {{range $src, $msg := .FetchErrors}}
      <tr><td>{{$src}}</td><td class="warn">{{$msg}}</td></tr>
      {{end}}
    </table>
  </section>
  {{end}}
{{end}}
</main>
</body>
</html>
`))
