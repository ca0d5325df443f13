package comparator

import (
	"strings"
	"unicode"

	"github.com/courtedge/courtbot/internal/domain"
)

// abbreviations expands well-known first-initial tokens to full names so
// differently formatted quotes for the same player merge. The table is
// deliberately small and fixed; initials outside it stay as-is, which can
// leave the same real match in two groups. That is a known limit of
// name-based matching, not something to paper over with fuzzy logic.
var abbreviations = map[string]string{
	"N.": "Novak",
	"R.": "Rafael",
}

// NormalizePlayerName produces the canonical form of a player name used
// for cross-bookmaker matching: whitespace collapsed, words title-cased,
// known abbreviations expanded.
func NormalizePlayerName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		w = titleWord(w)
		if full, ok := abbreviations[w]; ok {
			w = full
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// CanonicalPair normalizes both names and orders them lexicographically.
func CanonicalPair(a, b string) (first, second string) {
	na, nb := NormalizePlayerName(a), NormalizePlayerName(b)
	if nb < na {
		return nb, na
	}
	return na, nb
}

// MatchupKeyFor builds the order-independent key for two raw player names.
func MatchupKeyFor(a, b string) domain.MatchupKey {
	first, second := CanonicalPair(a, b)
	return domain.MatchupKey(first + " | " + second)
}

// GroupRecords buckets records by matchup. Groups come back in first-seen
// order so downstream output is deterministic for a given input order; the
// map indexes the same groups by key. Records whose names normalize to a
// colliding pair merge into one group.
func GroupRecords(records []domain.MatchRecord) ([]*domain.MatchupGroup, map[domain.MatchupKey]*domain.MatchupGroup) {
	ordered := make([]*domain.MatchupGroup, 0, len(records))
	index := make(map[domain.MatchupKey]*domain.MatchupGroup, len(records))

	for _, rec := range records {
		first, second := CanonicalPair(rec.PlayerA, rec.PlayerB)
		key := domain.MatchupKey(first + " | " + second)

		group, ok := index[key]
		if !ok {
			group = &domain.MatchupGroup{
				Key:        key,
				CanonicalA: first,
				CanonicalB: second,
			}
			index[key] = group
			ordered = append(ordered, group)
		}
		group.Records = append(group.Records, rec)
	}
	return ordered, index
}
