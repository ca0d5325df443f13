package comparator

import "github.com/courtedge/courtbot/internal/domain"

// SelectBestOdds finds the highest odds per canonical outcome across a
// group's records. Each record's odds are remapped onto the canonical
// slots by its normalized names, so a source listing the players in the
// opposite order still contributes to the right outcome. Ties keep the
// first record encountered; tournament and schedule metadata come from the
// group's first record.
func SelectBestOdds(group *domain.MatchupGroup) domain.BestOdds {
	best := domain.BestOdds{
		Key:     group.Key,
		PlayerA: group.CanonicalA,
		PlayerB: group.CanonicalB,
	}
	if len(group.Records) == 0 {
		return best
	}

	first := group.Records[0]
	best.Tournament = first.Tournament
	best.MatchDate = first.MatchDate
	best.MatchTime = first.MatchTime

	for _, rec := range group.Records {
		oddsA, oddsB := rec.OddsA, rec.OddsB
		if NormalizePlayerName(rec.PlayerA) != group.CanonicalA {
			oddsA, oddsB = oddsB, oddsA
		}
		if oddsA > best.OddsA {
			best.OddsA = oddsA
			best.SourceA = rec.SourceName
		}
		if oddsB > best.OddsB {
			best.OddsB = oddsB
			best.SourceB = rec.SourceName
		}
	}
	return best
}
