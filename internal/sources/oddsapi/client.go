// Package oddsapi fetches live head-to-head tennis odds from
// the-odds-api.com. One fetch covers the configured sport keys and
// flattens every bookmaker's h2h quote into its own match record.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

// Config configures the API client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.the-odds-api.com/v4".
	BaseURL string

	// APIKey authenticates requests; the free tier allows 500 per month.
	APIKey string

	// Sports are the sport keys to fetch, e.g. tennis_atp, tennis_wta.
	Sports []string

	// Regions selects bookmaker regions as a comma list (us, eu, uk, au).
	Regions string

	Timeout time.Duration
}

// Client is the REST client for the odds API.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

var _ domain.Source = (*Client)(nil)

// New creates an odds API client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.the-odds-api.com/v4"
	}
	if len(cfg.Sports) == 0 {
		cfg.Sports = []string{"tennis_atp", "tennis_wta"}
	}
	if cfg.Regions == "" {
		cfg.Regions = "us,eu"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("source", "oddsapi")),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies the adapter.
func (c *Client) Name() string { return "oddsapi" }

// FetchMatches fetches h2h odds for every configured sport key. A failed
// request aborts the fetch; malformed individual quotes are skipped.
func (c *Client) FetchMatches(ctx context.Context) ([]domain.MatchRecord, error) {
	var records []domain.MatchRecord
	for _, sport := range c.cfg.Sports {
		events, err := c.getOdds(ctx, sport)
		if err != nil {
			return nil, fmt.Errorf("oddsapi: fetch %s: %w", sport, err)
		}
		records = append(records, c.transform(events)...)
	}
	return records, nil
}

func (c *Client) getOdds(ctx context.Context, sport string) ([]Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("regions", c.cfg.Regions)
	params.Set("markets", "h2h")
	params.Set("oddsFormat", "decimal")

	reqURL := fmt.Sprintf("%s/sports/%s/odds?%s", c.cfg.BaseURL, url.PathEscape(sport), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" {
		c.logger.Debug("api quota", slog.String("requests_remaining", remaining))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode odds: %w", err)
	}
	return events, nil
}

// checkStatus maps non-2xx HTTP status codes to domain errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrSourceUnavailable, statusCode, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}
}

// transform flattens events into one record per bookmaker with a complete
// h2h market. Quotes missing a side are skipped.
func (c *Client) transform(events []Event) []domain.MatchRecord {
	now := time.Now().UTC()
	var records []domain.MatchRecord

	for _, ev := range events {
		if ev.HomeTeam == "" || ev.AwayTeam == "" {
			continue
		}

		var matchDate, matchTime string
		if !ev.CommenceTime.IsZero() {
			start := ev.CommenceTime.UTC()
			matchDate = start.Format("2006-01-02")
			matchTime = start.Format("15:04")
		}

		for _, bm := range ev.Bookmakers {
			oddsA, oddsB, ok := h2hOdds(bm, ev.HomeTeam, ev.AwayTeam)
			if !ok {
				c.logger.Debug("skipping incomplete quote",
					slog.String("event_id", ev.ID),
					slog.String("bookmaker", bm.Key))
				continue
			}
			records = append(records, domain.MatchRecord{
				CapturedAt: now,
				SourceName: bm.Title,
				Tournament: ev.SportTitle,
				PlayerA:    ev.HomeTeam,
				PlayerB:    ev.AwayTeam,
				OddsA:      oddsA,
				OddsB:      oddsB,
				MatchDate:  matchDate,
				MatchTime:  matchTime,
				SourceURL:  "https://the-odds-api.com",
			})
		}
	}
	return records
}

// h2hOdds pulls one bookmaker's h2h prices, matching outcome names to the
// home and away players and falling back to outcome order when the names
// do not line up.
func h2hOdds(bm Bookmaker, home, away string) (oddsA, oddsB float64, ok bool) {
	for _, market := range bm.Markets {
		if market.Key != "h2h" {
			continue
		}
		if len(market.Outcomes) < 2 {
			return 0, 0, false
		}
		oddsA, oddsB = market.Outcomes[0].Price, market.Outcomes[1].Price
		for _, out := range market.Outcomes {
			switch out.Name {
			case home:
				oddsA = out.Price
			case away:
				oddsB = out.Price
			}
		}
		return oddsA, oddsB, oddsA > 0 && oddsB > 0
	}
	return 0, 0, false
}
