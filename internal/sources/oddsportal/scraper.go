// Package oddsportal scrapes the oddsportal.com tennis listing. The listing
// is rendered client side, so a plain HTTP fetch returns an empty shell;
// chromedp drives a headless Chrome session and hands the rendered document
// to a goquery row parser. Every selector is configuration: the markup
// shifts between site redesigns and the defaults only track the layout the
// adapter was last tuned against.
package oddsportal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/oddsmath"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Selectors locate match data inside the rendered listing. Player and odds
// selectors are expected to match the two sides of a row in document order.
type Selectors struct {
	MatchRow   string
	Player     string
	Odds       string
	Tournament string
	Date       string
	Time       string
}

func (s Selectors) withDefaults() Selectors {
	if s.MatchRow == "" {
		s.MatchRow = "div.eventRow"
	}
	if s.Player == "" {
		s.Player = "div.participant-name"
	}
	if s.Odds == "" {
		s.Odds = "span.odds"
	}
	if s.Tournament == "" {
		s.Tournament = "div.event__title"
	}
	if s.Date == "" {
		s.Date = ".event__date, .date"
	}
	if s.Time == "" {
		s.Time = ".event__time, .time"
	}
	return s
}

// Config configures the scraper.
type Config struct {
	// URL is the listing page to scrape.
	URL string

	// Headless hides the browser window. Running headful helps when
	// chasing a selector change.
	Headless bool

	// Timeout bounds one full render, navigation included.
	Timeout time.Duration

	Selectors Selectors
}

// Scraper is the oddsportal source adapter.
type Scraper struct {
	cfg     Config
	baseURL *url.URL
	logger  *slog.Logger
}

var _ domain.Source = (*Scraper)(nil)

// New creates a scraper. Zero URL, timeout, and selector fields fall back
// to defaults for the public tennis listing.
func New(cfg Config, logger *slog.Logger) *Scraper {
	if cfg.URL == "" {
		cfg.URL = "https://www.oddsportal.com/tennis/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.Selectors = cfg.Selectors.withDefaults()

	base, err := url.Parse(cfg.URL)
	if err != nil {
		base = nil
	}
	return &Scraper{
		cfg:     cfg,
		baseURL: base,
		logger:  logger.With(slog.String("source", "oddsportal")),
	}
}

// Name identifies the adapter.
func (s *Scraper) Name() string { return "oddsportal" }

// FetchMatches renders the listing and extracts one record per match row.
// Rows missing players or odds are skipped with a debug log.
func (s *Scraper) FetchMatches(ctx context.Context) ([]domain.MatchRecord, error) {
	html, err := s.renderListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("oddsportal: render %s: %w", s.cfg.URL, err)
	}
	return s.parseListing(html)
}

// renderListing loads the listing in a headless browser, waits for the
// first match row to appear, and returns the rendered document.
func (s *Scraper) renderListing(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.cfg.URL),
		chromedp.WaitVisible(s.cfg.Selectors.MatchRow, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return html, nil
}

// parseListing extracts match records from a rendered listing document.
func (s *Scraper) parseListing(html string) ([]domain.MatchRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("oddsportal: parse listing: %w", err)
	}

	now := time.Now().UTC()
	var records []domain.MatchRecord
	skipped := 0

	doc.Find(s.cfg.Selectors.MatchRow).Each(func(_ int, row *goquery.Selection) {
		rec, err := s.parseRow(row)
		if err != nil {
			skipped++
			s.logger.Debug("skipping match row", slog.String("error", err.Error()))
			return
		}
		rec.CapturedAt = now
		records = append(records, rec)
	})

	if skipped > 0 {
		s.logger.Warn("dropped unparsable match rows",
			slog.Int("dropped", skipped),
			slog.Int("kept", len(records)))
	}
	return records, nil
}

func (s *Scraper) parseRow(row *goquery.Selection) (domain.MatchRecord, error) {
	players := row.Find(s.cfg.Selectors.Player)
	if players.Length() < 2 {
		return domain.MatchRecord{}, fmt.Errorf("%d player cells, want 2", players.Length())
	}
	playerA := strings.TrimSpace(players.Eq(0).Text())
	playerB := strings.TrimSpace(players.Eq(1).Text())
	if playerA == "" || playerB == "" {
		return domain.MatchRecord{}, errors.New("empty player name")
	}

	oddsCells := row.Find(s.cfg.Selectors.Odds)
	if oddsCells.Length() < 2 {
		return domain.MatchRecord{}, fmt.Errorf("%d odds cells, want 2", oddsCells.Length())
	}
	oddsA, err := oddsmath.ParseOdds(oddsCells.Eq(0).Text())
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("odds A: %w", err)
	}
	oddsB, err := oddsmath.ParseOdds(oddsCells.Eq(1).Text())
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("odds B: %w", err)
	}

	return domain.MatchRecord{
		SourceName: "oddsportal",
		Tournament: selectText(row, s.cfg.Selectors.Tournament),
		PlayerA:    playerA,
		PlayerB:    playerB,
		OddsA:      oddsA,
		OddsB:      oddsB,
		MatchDate:  selectText(row, s.cfg.Selectors.Date),
		MatchTime:  selectText(row, s.cfg.Selectors.Time),
		SourceURL:  s.matchURL(row),
	}, nil
}

// selectText returns the trimmed text of the first selector match, or "".
func selectText(row *goquery.Selection, selector string) string {
	return strings.TrimSpace(row.Find(selector).First().Text())
}

// matchURL resolves the row's first link against the listing origin. Rows
// without a usable link fall back to the listing URL.
func (s *Scraper) matchURL(row *goquery.Selection) string {
	href, ok := row.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return s.cfg.URL
	}
	if s.baseURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return s.cfg.URL
	}
	return s.baseURL.ResolveReference(ref).String()
}
