package ingest

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/courtedge/courtbot/internal/domain"
)

var validate = validator.New()

// ValidateRecord reports whether a record satisfies the ingestion
// contract: source and both player names present, both odds positive.
func ValidateRecord(rec domain.MatchRecord) error {
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	return nil
}

// Filter splits sanitized records into those safe for analysis and a count
// of rejects. Rejected records are logged at debug level and never abort
// the batch.
func Filter(logger *slog.Logger, records []domain.MatchRecord) (valid []domain.MatchRecord, dropped int) {
	valid = make([]domain.MatchRecord, 0, len(records))
	for _, rec := range records {
		if err := ValidateRecord(rec); err != nil {
			dropped++
			logger.Debug("dropping invalid record",
				slog.String("source", rec.SourceName),
				slog.String("player_a", rec.PlayerA),
				slog.String("player_b", rec.PlayerB),
				slog.String("reason", err.Error()))
			continue
		}
		valid = append(valid, rec)
	}
	return valid, dropped
}
