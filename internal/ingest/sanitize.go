// Package ingest cleans and validates raw match records before they reach
// the comparator. Sources hand over whatever they scraped; this package
// makes sure only well-formed records continue.
package ingest

import (
	"regexp"
	"strings"

	"github.com/courtedge/courtbot/internal/domain"
)

// retMarker matches retirement annotations such as "(ret)" or "[RET.]"
// that some books append to a withdrawing player's name.
var retMarker = regexp.MustCompile(`(?i)[(\[]\s*ret\.?\s*[)\]]`)

// Sanitize normalizes the free-text fields of a raw record. Player names
// lose retirement markers and surplus whitespace; an empty tournament
// defaults to "Unknown". Odds are left untouched for Filter to judge.
func Sanitize(rec domain.MatchRecord) domain.MatchRecord {
	rec.SourceName = strings.TrimSpace(rec.SourceName)
	rec.PlayerA = CleanPlayerName(rec.PlayerA)
	rec.PlayerB = CleanPlayerName(rec.PlayerB)
	rec.Tournament = strings.TrimSpace(rec.Tournament)
	if rec.Tournament == "" {
		rec.Tournament = "Unknown"
	}
	rec.MatchDate = strings.TrimSpace(rec.MatchDate)
	rec.MatchTime = strings.TrimSpace(rec.MatchTime)
	return rec
}

// CleanPlayerName strips retirement markers and collapses runs of
// whitespace into single spaces.
func CleanPlayerName(name string) string {
	name = retMarker.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}
