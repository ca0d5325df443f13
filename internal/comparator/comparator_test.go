package comparator

import (
	"testing"

	"github.com/courtedge/courtbot/internal/domain"
)

func TestEnrich(t *testing.T) {
	t.Parallel()

	records := []domain.MatchRecord{
		rec("book-a", "One O.", "Two T.", 1.50, 2.80),
		rec("book-a", "Three T.", "Four F.", 2.0, 2.0),
		rec("book-a", "Five F.", "Six S.", 0, 2.0),
	}

	enriched := Enrich(records)
	if len(enriched) != 3 {
		t.Fatalf("len(enriched) = %d, want 3", len(enriched))
	}

	first := enriched[0]
	if first.ImpliedProbA != 66.67 || first.ImpliedProbB != 35.71 {
		t.Errorf("implied probs = (%v, %v), want (66.67, 35.71)", first.ImpliedProbA, first.ImpliedProbB)
	}
	if first.Margin != 2.38 {
		t.Errorf("Margin = %v, want 2.38", first.Margin)
	}
	if first.PlayerA != "One O." {
		t.Errorf("PlayerA = %q, want %q", first.PlayerA, "One O.")
	}

	// Fair two-way odds carry zero margin.
	if enriched[1].Margin != 0 {
		t.Errorf("Margin = %v, want 0", enriched[1].Margin)
	}

	// Invalid odds leave every metric at its zero sentinel.
	invalid := enriched[2]
	if invalid.ImpliedProbA != 0 || invalid.Margin != 0 {
		t.Errorf("invalid odds metrics = (%v, %v), want zeros", invalid.ImpliedProbA, invalid.Margin)
	}
}

func TestEnrichEmpty(t *testing.T) {
	t.Parallel()

	if got := Enrich(nil); got == nil || len(got) != 0 {
		t.Errorf("Enrich(nil) = %v, want empty non-nil slice", got)
	}
}
