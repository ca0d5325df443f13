package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// SnapshotService defines the snapshot access the status handler requires
// from the service layer.
type SnapshotService interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// StatusHandler reports the runtime mode, the configured sources and the
// outcome of the most recent aggregation pass.
type StatusHandler struct {
	snapshots SnapshotService
	mode      string
	sources   []string
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler. mode and sources describe the
// running process and are fixed at startup.
func NewStatusHandler(snapshots SnapshotService, mode string, sources []string, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		snapshots: snapshots,
		mode:      mode,
		sources:   sources,
		logger:    logHandler(logger, "status"),
	}
}

// lastScanInfo summarizes the most recent snapshot for the status endpoint.
type lastScanInfo struct {
	RunID         string            `json:"run_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Matches       int               `json:"matches"`
	Records       int               `json:"records"`
	Opportunities int               `json:"opportunities"`
	FetchErrors   map[string]string `json:"fetch_errors,omitempty"`
}

// statusResponse is the GET /api/status payload. LastScan is nil until the
// first pass completes.
type statusResponse struct {
	Mode     string        `json:"mode"`
	Sources  []string      `json:"sources"`
	LastScan *lastScanInfo `json:"last_scan"`
}

// GetStatus returns the process status. It answers 200 even before the
// first scan so probes can distinguish "up but idle" from "down".
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Mode:    h.mode,
		Sources: h.sources,
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	switch {
	case err == nil:
		resp.LastScan = &lastScanInfo{
			RunID:         snap.Report.RunID,
			GeneratedAt:   snap.Report.GeneratedAt,
			Matches:       snap.Report.TotalMatches,
			Records:       len(snap.Records),
			Opportunities: snap.Report.OpportunityCount,
			FetchErrors:   snap.FetchErrors,
		}
	case errors.Is(err, domain.ErrNoSnapshot):
		// No pass yet; LastScan stays nil.
	default:
		h.logger.ErrorContext(r.Context(), "handler: status snapshot lookup failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load status")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
