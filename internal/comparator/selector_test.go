package comparator

import (
	"testing"

	"github.com/courtedge/courtbot/internal/domain"
)

func groupOf(records ...domain.MatchRecord) *domain.MatchupGroup {
	ordered, _ := GroupRecords(records)
	if len(ordered) != 1 {
		panic("test records span more than one matchup")
	}
	return ordered[0]
}

func TestSelectBestOdds(t *testing.T) {
	t.Parallel()

	group := groupOf(
		rec("book-a", "Carlos Alcaraz", "Jannik Sinner", 2.10, 2.05),
		rec("book-b", "Carlos Alcaraz", "Jannik Sinner", 1.95, 2.20),
	)

	best := SelectBestOdds(group)

	if best.OddsA != 2.10 || best.SourceA != "book-a" {
		t.Errorf("best A = %v from %q, want 2.10 from book-a", best.OddsA, best.SourceA)
	}
	if best.OddsB != 2.20 || best.SourceB != "book-b" {
		t.Errorf("best B = %v from %q, want 2.20 from book-b", best.OddsB, best.SourceB)
	}
	if best.PlayerA != "Carlos Alcaraz" || best.PlayerB != "Jannik Sinner" {
		t.Errorf("players = (%q, %q)", best.PlayerA, best.PlayerB)
	}
	if best.Tournament != "Wimbledon" || best.MatchDate != "2025-06-03" || best.MatchTime != "14:00" {
		t.Errorf("metadata = (%q, %q, %q), want first record's", best.Tournament, best.MatchDate, best.MatchTime)
	}
}

// A source listing the players in the opposite order must contribute its
// odds to the right canonical slots.
func TestSelectBestOddsSwappedSlots(t *testing.T) {
	t.Parallel()

	group := groupOf(
		rec("book-a", "Carlos Alcaraz", "Jannik Sinner", 2.10, 2.05),
		rec("book-b", "Jannik Sinner", "Carlos Alcaraz", 2.20, 1.95),
	)

	best := SelectBestOdds(group)

	if best.OddsA != 2.10 || best.SourceA != "book-a" {
		t.Errorf("best A = %v from %q, want 2.10 from book-a", best.OddsA, best.SourceA)
	}
	if best.OddsB != 2.20 || best.SourceB != "book-b" {
		t.Errorf("best B = %v from %q, want 2.20 from book-b", best.OddsB, best.SourceB)
	}
}

func TestSelectBestOddsTieKeepsFirst(t *testing.T) {
	t.Parallel()

	group := groupOf(
		rec("book-a", "Carlos Alcaraz", "Jannik Sinner", 2.10, 2.05),
		rec("book-b", "Carlos Alcaraz", "Jannik Sinner", 2.10, 2.05),
	)

	best := SelectBestOdds(group)

	if best.SourceA != "book-a" {
		t.Errorf("tie on odds A attributed to %q, want first-seen book-a", best.SourceA)
	}
	if best.SourceB != "book-a" {
		t.Errorf("tie on odds B attributed to %q, want first-seen book-a", best.SourceB)
	}
}

func TestSelectBestOddsEmptyGroup(t *testing.T) {
	t.Parallel()

	group := &domain.MatchupGroup{
		Key:        "A | B",
		CanonicalA: "A",
		CanonicalB: "B",
	}
	best := SelectBestOdds(group)

	if best.OddsA != 0 || best.OddsB != 0 {
		t.Errorf("empty group best odds = (%v, %v), want zeros", best.OddsA, best.OddsB)
	}
	if best.PlayerA != "A" || best.PlayerB != "B" {
		t.Errorf("players = (%q, %q), want canonical names", best.PlayerA, best.PlayerB)
	}
}
