package comparator

import (
	"sort"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

// FindValueBets ranks records whose bookmaker margin is defined and below
// threshold, best value (lowest margin) first. A margin of exactly 0 is
// the undefined sentinel and never ranks; negative margins do. Equal
// margins keep input order. A limit of 0 or less returns every qualifying
// record.
func FindValueBets(records []domain.MatchRecord, threshold float64, limit int) []domain.ValueBet {
	bets := make([]domain.ValueBet, 0)
	for _, rec := range records {
		margin := oddsmath.BookmakerMargin(rec.OddsA, rec.OddsB)
		if margin == 0 || margin >= threshold {
			continue
		}
		bets = append(bets, domain.ValueBet{Record: rec, Margin: oddsmath.Round2(margin)})
	}
	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].Margin < bets[j].Margin
	})
	if limit > 0 && len(bets) > limit {
		bets = bets[:limit]
	}
	return bets
}

// CompareSources summarizes how each bookmaker prices its book: record
// count plus average, minimum, and maximum margin over records where the
// margin is defined. Sources come back ordered by average margin
// ascending, ties alphabetical.
func CompareSources(records []domain.MatchRecord) []domain.SourceComparison {
	type agg struct {
		count    int
		defined  int
		sum      float64
		min, max float64
	}

	byName := make(map[string]*agg)
	names := make([]string, 0)
	for _, rec := range records {
		a, ok := byName[rec.SourceName]
		if !ok {
			a = &agg{}
			byName[rec.SourceName] = a
			names = append(names, rec.SourceName)
		}
		a.count++

		margin := oddsmath.BookmakerMargin(rec.OddsA, rec.OddsB)
		if margin == 0 {
			continue
		}
		if a.defined == 0 || margin < a.min {
			a.min = margin
		}
		if a.defined == 0 || margin > a.max {
			a.max = margin
		}
		a.sum += margin
		a.defined++
	}

	sort.Strings(names)
	comps := make([]domain.SourceComparison, 0, len(names))
	for _, name := range names {
		a := byName[name]
		comp := domain.SourceComparison{Source: name, Records: a.count}
		if a.defined > 0 {
			comp.AvgMargin = oddsmath.Round2(a.sum / float64(a.defined))
			comp.MinMargin = oddsmath.Round2(a.min)
			comp.MaxMargin = oddsmath.Round2(a.max)
		}
		comps = append(comps, comp)
	}
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].AvgMargin < comps[j].AvgMargin
	})
	return comps
}
