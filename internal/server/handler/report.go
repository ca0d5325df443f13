package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/courtedge/courtbot/internal/domain"
)

// ReportQueries defines the report access the report handler requires from
// the service layer.
type ReportQueries interface {
	Report(ctx context.Context) (domain.Report, error)
}

// ReportHandler serves the full aggregation report.
type ReportHandler struct {
	reports ReportQueries
	logger  *slog.Logger
}

// NewReportHandler creates a ReportHandler with the given service and logger.
func NewReportHandler(reports ReportQueries, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logHandler(logger, "report"),
	}
}

// GetReport returns the report from the latest aggregation pass. Before the
// first pass completes it returns a well-formed zero report rather than an
// error, so dashboards can poll it unconditionally.
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Report(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeJSON(w, http.StatusOK, domain.Report{})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get report failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
