package oddsportal

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const listingFixture = `<html><body>
  <div class="eventRow">
    <div class="event__title">ATP Cincinnati</div>
    <div class="event__date">2025-08-12</div>
    <div class="event__time">14:30</div>
    <div class="participant-name">Djokovic N.</div>
    <div class="participant-name">Alcaraz C.</div>
    <span class="odds">1.85</span>
    <span class="odds">2.10</span>
    <a href="/tennis/cincinnati/djokovic-alcaraz/">details</a>
  </div>
  <div class="eventRow">
    <div class="participant-name">Swiatek I.</div>
    <div class="participant-name">Gauff C.</div>
    <span class="odds">6/4</span>
    <span class="odds">2.40</span>
  </div>
  <div class="eventRow">
    <div class="participant-name">Lonely P.</div>
    <span class="odds">1.50</span>
    <span class="odds">2.50</span>
  </div>
</body></html>`

func TestParseListing(t *testing.T) {
	t.Parallel()

	s := New(Config{}, discardLogger())
	records, err := s.parseListing(listingFixture)
	if err != nil {
		t.Fatalf("parseListing() error = %v", err)
	}

	// The third row carries a single player cell and is dropped.
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	first := records[0]
	if first.PlayerA != "Djokovic N." || first.PlayerB != "Alcaraz C." {
		t.Errorf("players = %q vs %q, want Djokovic N. vs Alcaraz C.", first.PlayerA, first.PlayerB)
	}
	if first.OddsA != 1.85 || first.OddsB != 2.10 {
		t.Errorf("odds = (%v, %v), want (1.85, 2.10)", first.OddsA, first.OddsB)
	}
	if first.Tournament != "ATP Cincinnati" {
		t.Errorf("Tournament = %q, want %q", first.Tournament, "ATP Cincinnati")
	}
	if first.MatchDate != "2025-08-12" {
		t.Errorf("MatchDate = %q, want %q", first.MatchDate, "2025-08-12")
	}
	if first.MatchTime != "14:30" {
		t.Errorf("MatchTime = %q, want %q", first.MatchTime, "14:30")
	}
	wantURL := "https://www.oddsportal.com/tennis/cincinnati/djokovic-alcaraz/"
	if first.SourceURL != wantURL {
		t.Errorf("SourceURL = %q, want %q", first.SourceURL, wantURL)
	}
	if first.SourceName != "oddsportal" {
		t.Errorf("SourceName = %q, want %q", first.SourceName, "oddsportal")
	}
	if first.CapturedAt.IsZero() {
		t.Error("CapturedAt is zero")
	}

	second := records[1]
	// Fractional odds convert to decimal.
	if second.OddsA != 2.5 || second.OddsB != 2.40 {
		t.Errorf("odds = (%v, %v), want (2.5, 2.40)", second.OddsA, second.OddsB)
	}
	if second.Tournament != "" {
		t.Errorf("Tournament = %q, want empty", second.Tournament)
	}
	// A row without a link falls back to the listing URL.
	if second.SourceURL != "https://www.oddsportal.com/tennis/" {
		t.Errorf("SourceURL = %q, want listing URL", second.SourceURL)
	}
}

func TestParseListingNoRows(t *testing.T) {
	t.Parallel()

	s := New(Config{}, discardLogger())
	records, err := s.parseListing(`<html><body><p>maintenance</p></body></html>`)
	if err != nil {
		t.Fatalf("parseListing() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestParseListingCustomSelectors(t *testing.T) {
	t.Parallel()

	s := New(Config{
		URL: "https://mirror.example.com/tennis/",
		Selectors: Selectors{
			MatchRow:   "li.match-card",
			Player:     "span.player",
			Odds:       "em.price",
			Tournament: "h3",
		},
	}, discardLogger())

	records, err := s.parseListing(`<html><body><ul>
	  <li class="match-card">
	    <h3>WTA Montreal</h3>
	    <span class="player">Sabalenka A.</span>
	    <span class="player">Rybakina E.</span>
	    <em class="price">1.72</em>
	    <em class="price">2.15</em>
	    <a href="cards/101">card</a>
	  </li>
	</ul></body></html>`)
	if err != nil {
		t.Fatalf("parseListing() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.PlayerA != "Sabalenka A." || rec.PlayerB != "Rybakina E." {
		t.Errorf("players = %q vs %q", rec.PlayerA, rec.PlayerB)
	}
	if rec.OddsA != 1.72 || rec.OddsB != 2.15 {
		t.Errorf("odds = (%v, %v), want (1.72, 2.15)", rec.OddsA, rec.OddsB)
	}
	if rec.Tournament != "WTA Montreal" {
		t.Errorf("Tournament = %q, want %q", rec.Tournament, "WTA Montreal")
	}
	wantURL := "https://mirror.example.com/tennis/cards/101"
	if rec.SourceURL != wantURL {
		t.Errorf("SourceURL = %q, want %q", rec.SourceURL, wantURL)
	}
}

func TestParseRowErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{
			name: "missing second player",
			row: `<div class="eventRow">
			  <div class="participant-name">Solo S.</div>
			  <span class="odds">1.50</span><span class="odds">2.50</span>
			</div>`,
		},
		{
			name: "blank player name",
			row: `<div class="eventRow">
			  <div class="participant-name">  </div>
			  <div class="participant-name">Real R.</div>
			  <span class="odds">1.50</span><span class="odds">2.50</span>
			</div>`,
		},
		{
			name: "missing odds cell",
			row: `<div class="eventRow">
			  <div class="participant-name">One O.</div>
			  <div class="participant-name">Two T.</div>
			  <span class="odds">1.50</span>
			</div>`,
		},
		{
			name: "unparsable odds",
			row: `<div class="eventRow">
			  <div class="participant-name">One O.</div>
			  <div class="participant-name">Two T.</div>
			  <span class="odds">-</span><span class="odds">2.50</span>
			</div>`,
		},
	}

	s := New(Config{}, discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.row))
			if err != nil {
				t.Fatalf("parse fixture: %v", err)
			}
			if _, err := s.parseRow(doc.Find("div.eventRow").First()); err == nil {
				t.Error("parseRow() error = nil, want error")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := New(Config{}, discardLogger())
	if s.Name() != "oddsportal" {
		t.Errorf("Name() = %q, want %q", s.Name(), "oddsportal")
	}
	if s.cfg.URL != "https://www.oddsportal.com/tennis/" {
		t.Errorf("URL = %q, want default listing", s.cfg.URL)
	}
	if s.cfg.Selectors.MatchRow != "div.eventRow" {
		t.Errorf("MatchRow = %q, want %q", s.cfg.Selectors.MatchRow, "div.eventRow")
	}
	if s.cfg.Selectors.Player != "div.participant-name" {
		t.Errorf("Player = %q, want %q", s.cfg.Selectors.Player, "div.participant-name")
	}
	if s.cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, want positive default", s.cfg.Timeout)
	}
}
