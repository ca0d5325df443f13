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
	defaultMatchLimit = 100
	maxMatchLimit     = 1000
)

// MatchService defines the snapshot queries the match handler requires from
// the service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type MatchService interface {
	Matches(ctx context.Context, filter service.MatchFilter) ([]domain.EnrichedMatch, error)
	Tournaments(ctx context.Context) ([]service.TournamentCount, error)
	PlayerMatches(ctx context.Context, name string) ([]domain.EnrichedMatch, error)
}

// MatchHandler serves the enriched match listing endpoints.
type MatchHandler struct {
	matches MatchService
	logger  *slog.Logger
}

// NewMatchHandler creates a MatchHandler with the given service and logger.
func NewMatchHandler(matches MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		logger:  logHandler(logger, "matches"),
	}
}

// listMatchesResponse wraps the match list output with metadata.
type listMatchesResponse struct {
	Matches []domain.EnrichedMatch `json:"matches"`
	Count   int                    `json:"count"`
}

// ListMatches returns enriched records from the latest snapshot, optionally
// filtered by tournament, source, minimum odds and maximum margin.
// GET /api/matches?tournament=&source=&min_odds=&max_margin=&limit=
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	minOdds, ok := queryFloat(r, "min_odds", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid min_odds parameter")
		return
	}
	maxMargin, ok := queryFloat(r, "max_margin", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid max_margin parameter")
		return
	}
	limit, ok := queryInt(r, "limit", defaultMatchLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	filter := service.MatchFilter{
		Tournament: r.URL.Query().Get("tournament"),
		Source:     r.URL.Query().Get("source"),
		MinOdds:    minOdds,
		MaxMargin:  maxMargin,
		Limit:      clampLimit(limit, defaultMatchLimit, maxMatchLimit),
	}

	matches, err := h.matches.Matches(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no match data available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list matches failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	writeJSON(w, http.StatusOK, listMatchesResponse{
		Matches: matches,
		Count:   len(matches),
	})
}

// ListTournaments returns the distinct tournaments in the latest snapshot
// with per-tournament match counts.
// GET /api/tournaments
func (h *MatchHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.matches.Tournaments(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no match data available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list tournaments failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list tournaments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tournaments": tournaments,
		"count":       len(tournaments),
	})
}

// GetPlayerMatches returns records where either player's name contains the
// given fragment, case-insensitively.
// GET /api/players/{name}
func (h *MatchHandler) GetPlayerMatches(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing player name")
		return
	}

	matches, err := h.matches.PlayerMatches(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) || errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no matches found for player")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: player matches failed",
			slog.String("player", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to look up player matches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"player":  name,
		"matches": matches,
		"count":   len(matches),
	})
}
