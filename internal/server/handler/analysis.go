package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/service"
)

const (
	defaultValueBetLimit = 20
	maxValueBetLimit     = 200

	// defaultValueBetMargin mirrors the scan-time threshold so the endpoint
	// behaves the same with no parameters.
	defaultValueBetMargin = 3.0
)

// AnalysisService defines the derived-metric queries the analysis handler
// requires from the service layer.
type AnalysisService interface {
	Stats(ctx context.Context) (service.Stats, error)
	ValueBets(ctx context.Context, maxMargin float64, limit int) ([]domain.ValueBet, error)
	Arbitrage(ctx context.Context, minProfit float64) ([]domain.ArbitrageOpportunity, error)
}

// AnalysisHandler serves the statistics, value-bet and arbitrage endpoints.
type AnalysisHandler struct {
	analysis AnalysisService
	logger   *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler with the given service and logger.
func NewAnalysisHandler(analysis AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		logger:   logHandler(logger, "analysis"),
	}
}

// GetStats returns aggregate statistics over the latest snapshot.
// GET /api/stats
func (h *AnalysisHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analysis.Stats(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no match data available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ListValueBets returns records whose bookmaker margin falls below the
// max_margin threshold, best value first.
// GET /api/value-bets?max_margin=3.0&limit=20
func (h *AnalysisHandler) ListValueBets(w http.ResponseWriter, r *http.Request) {
	maxMargin, ok := queryFloat(r, "max_margin", defaultValueBetMargin)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid max_margin parameter")
		return
	}
	limit, ok := queryInt(r, "limit", defaultValueBetLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	bets, err := h.analysis.ValueBets(r.Context(), maxMargin, clampLimit(limit, defaultValueBetLimit, maxValueBetLimit))
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no match data available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: value bets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list value bets")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"value_bets": bets,
		"count":      len(bets),
		"max_margin": maxMargin,
	})
}

// ListArbitrage returns arbitrage opportunities at or above the min_profit
// threshold, most profitable first.
// GET /api/arbitrage?min_profit=0.5
func (h *AnalysisHandler) ListArbitrage(w http.ResponseWriter, r *http.Request) {
	minProfit, ok := queryFloat(r, "min_profit", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid min_profit parameter")
		return
	}

	opps, err := h.analysis.Arbitrage(r.Context(), minProfit)
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no match data available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: arbitrage failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list arbitrage opportunities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
		"min_profit":    minProfit,
	})
}
