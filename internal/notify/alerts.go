package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/courtedge/courtbot/internal/domain"
)

// Alerts adapts the notifier to the scan pipeline: it formats arbitrage
// opportunities and scan failures into operator messages. Delivery errors
// are logged, never propagated, so alerting cannot stall a scan.
type Alerts struct {
	notifier  *Notifier
	minProfit float64
	logger    *slog.Logger
}

// NewAlerts creates an alert sink. Opportunities below minProfit percent
// are suppressed.
func NewAlerts(notifier *Notifier, minProfit float64, logger *slog.Logger) *Alerts {
	return &Alerts{
		notifier:  notifier,
		minProfit: minProfit,
		logger:    logger.With(slog.String("component", "alerts")),
	}
}

// OpportunityDetected notifies subscribers of a detected arbitrage
// opportunity at or above the profit threshold.
func (a *Alerts) OpportunityDetected(ctx context.Context, op domain.ArbitrageOpportunity) {
	if op.ProfitPct < a.minProfit {
		a.logger.DebugContext(ctx, "opportunity below alert threshold",
			slog.String("matchup", string(op.MatchupKey)),
			slog.Float64("profit_pct", op.ProfitPct),
		)
		return
	}

	title := fmt.Sprintf("Arbitrage: %s vs %s (%.2f%%)", op.PlayerA, op.PlayerB, op.ProfitPct)
	if err := a.notifier.Notify(ctx, EventArbDetected, title, formatOpportunity(op)); err != nil {
		a.logger.WarnContext(ctx, "opportunity alert delivery failed",
			slog.String("error", err.Error()),
		)
	}
}

// ScanFailed notifies subscribers that an aggregation pass failed outright.
func (a *Alerts) ScanFailed(ctx context.Context, reason string) {
	if err := a.notifier.Notify(ctx, EventScanFailed, "Scan failed", reason); err != nil {
		a.logger.WarnContext(ctx, "scan failure alert delivery failed",
			slog.String("error", err.Error()),
		)
	}
}

// formatOpportunity renders the actionable details: which player to back at
// which bookmaker, the stake split and the guaranteed profit.
func formatOpportunity(op domain.ArbitrageOpportunity) string {
	tournament := op.Tournament
	if tournament == "" {
		tournament = "unknown tournament"
	}
	return fmt.Sprintf(
		"%s vs %s (%s)\nBack %s @ %.2f (%s)\nBack %s @ %.2f (%s)\nStakes: %.2f%% / %.2f%%\nGuaranteed profit: %.2f%%",
		op.PlayerA, op.PlayerB, tournament,
		op.PlayerA, op.OddsA, op.SourceA,
		op.PlayerB, op.OddsB, op.SourceB,
		op.StakeAPct, op.StakeBPct,
		op.ProfitPct,
	)
}
