// Package config defines the top-level configuration for courtbot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by COURTBOT_* environment variables.
type Config struct {
	Scan     ScanConfig    `toml:"scan"`
	Sources  SourcesConfig `toml:"sources"`
	Server   ServerConfig  `toml:"server"`
	Redis    RedisConfig   `toml:"redis"`
	Export   ExportConfig  `toml:"export"`
	Notify   NotifyConfig  `toml:"notify"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// ScanConfig holds aggregation-pass parameters.
type ScanConfig struct {
	// Interval is the pause between passes in serve and full modes.
	Interval duration `toml:"interval"`

	// FetchTimeout bounds each individual source fetch.
	FetchTimeout duration `toml:"fetch_timeout"`

	// Concurrency bounds how many sources are fetched at once. Zero or
	// negative fetches every source in parallel.
	Concurrency int `toml:"concurrency"`

	// MinProfitPct drops arbitrage opportunities below this guaranteed
	// profit percentage.
	MinProfitPct float64 `toml:"min_profit_pct"`

	// ValueMarginThreshold is the exclusive upper bound on bookmaker
	// margin for a quote to rank as a value bet.
	ValueMarginThreshold float64 `toml:"value_margin_threshold"`

	// TopN caps the best-odds, opportunity, and value-bet samples embedded
	// in each report.
	TopN int `toml:"top_n"`

	// RequireTwoSources skips arbitrage signals whose two legs come from
	// one bookmaker. Off by default: a single book quoting both sides
	// generously is still reported.
	RequireTwoSources bool `toml:"require_two_sources"`

	// Calculations toggles derived metrics (implied probability, margin)
	// on exported rows.
	Calculations bool `toml:"calculations"`
}

// SourcesConfig holds the per-adapter settings plus the shared fetch
// discipline (rate limit and retry) applied to every enabled source.
type SourcesConfig struct {
	Demo       DemoSourceConfig `toml:"demo"`
	OddsAPI    OddsAPIConfig    `toml:"oddsapi"`
	Oddsportal OddsportalConfig `toml:"oddsportal"`

	// RateLimit is the minimum interval between two fetches of the same
	// source. Zero disables client-side rate limiting.
	RateLimit duration `toml:"rate_limit"`

	// MaxRetries is the total number of fetch attempts per source per
	// pass. Values below 1 mean a single attempt.
	MaxRetries int `toml:"max_retries"`

	// RetryBackoff is the delay before the second attempt; it doubles
	// after each failure.
	RetryBackoff duration `toml:"retry_backoff"`
}

// DemoSourceConfig configures the synthetic odds generator.
type DemoSourceConfig struct {
	Enabled bool `toml:"enabled"`

	// Bookmakers are the simulated book names; each quotes every matchup.
	Bookmakers []string `toml:"bookmakers"`

	// Seed fixes the random stream for reproducible batches. Zero seeds
	// from the clock.
	Seed int64 `toml:"seed"`
}

// OddsAPIConfig configures the the-odds-api.com client.
type OddsAPIConfig struct {
	Enabled bool     `toml:"enabled"`
	BaseURL string   `toml:"base_url"`
	APIKey  string   `toml:"api_key"`
	Sports  []string `toml:"sports"`
	Regions string   `toml:"regions"`
	Timeout duration `toml:"timeout"`
}

// OddsportalConfig configures the headless-browser scraper. Selectors are
// configuration because the site's markup shifts between redesigns.
type OddsportalConfig struct {
	Enabled   bool            `toml:"enabled"`
	URL       string          `toml:"url"`
	Headless  bool            `toml:"headless"`
	Timeout   duration        `toml:"timeout"`
	Selectors SelectorsConfig `toml:"selectors"`
}

// SelectorsConfig holds the CSS selectors used to pull match rows out of
// the rendered oddsportal listing.
type SelectorsConfig struct {
	MatchRow   string `toml:"match_row"`
	Player     string `toml:"player"`
	Odds       string `toml:"odds"`
	Tournament string `toml:"tournament"`
	Date       string `toml:"date"`
	Time       string `toml:"time"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`

	// RateLimitPerMin throttles each client IP; it requires Redis and is
	// disabled at 0.
	RateLimitPerMin int `toml:"rate_limit_per_min"`
}

// RedisConfig holds Redis connection parameters. When disabled, snapshots
// live in process memory and scan locking is off.
type RedisConfig struct {
	Enabled            bool   `toml:"enabled"`
	Addr               string `toml:"addr"`
	Password           string `toml:"password"`
	DB                 int    `toml:"db"`
	PoolSize           int    `toml:"pool_size"`
	MaxRetries         int    `toml:"max_retries"`
	TLSEnabled         bool   `toml:"tls_enabled"`
	SnapshotTTLMinutes int    `toml:"snapshot_ttl_minutes"`
}

// ExportConfig holds file export parameters.
type ExportConfig struct {
	Enabled bool `toml:"enabled"`

	// Dir is the local directory exports are written into.
	Dir string `toml:"dir"`

	// Format selects the writers: "csv", "excel", or "both".
	Format string `toml:"format"`

	// Append merges new CSV rows into an existing file instead of
	// overwriting, deduplicating repeated quotes.
	Append bool `toml:"append"`

	S3 S3Config `toml:"s3"`
}

// S3Config holds S3-compatible object storage parameters for mirroring
// exports off the local disk.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`

	// Prefix is prepended to every uploaded object key.
	Prefix string `toml:"prefix"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`

	// MinProfitPct suppresses opportunity alerts below this profit, so a
	// noisy low threshold for reporting does not page anyone.
	MinProfitPct float64 `toml:"min_profit_pct"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values: demo
// data only, scan mode, no server-side extras enabled.
func Defaults() Config {
	return Config{
		Scan: ScanConfig{
			Interval:             duration{5 * time.Minute},
			FetchTimeout:         duration{30 * time.Second},
			Concurrency:          4,
			MinProfitPct:         0,
			ValueMarginThreshold: 3.0,
			TopN:                 10,
			RequireTwoSources:    false,
			Calculations:         true,
		},
		Sources: SourcesConfig{
			Demo: DemoSourceConfig{
				Enabled:    true,
				Bookmakers: []string{"bet365", "pinnacle", "unibet", "betway"},
			},
			OddsAPI: OddsAPIConfig{
				Enabled: false,
				BaseURL: "https://api.the-odds-api.com/v4",
				Sports:  []string{"tennis_atp", "tennis_wta"},
				Regions: "us,eu",
				Timeout: duration{10 * time.Second},
			},
			Oddsportal: OddsportalConfig{
				Enabled:  false,
				URL:      "https://www.oddsportal.com/tennis/",
				Headless: true,
				Timeout:  duration{30 * time.Second},
			},
			RateLimit:    duration{2 * time.Second},
			MaxRetries:   3,
			RetryBackoff: duration{1 * time.Second},
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMin: 0,
		},
		Redis: RedisConfig{
			Enabled:            false,
			Addr:               "localhost:6379",
			DB:                 0,
			PoolSize:           20,
			MaxRetries:         3,
			TLSEnabled:         false,
			SnapshotTTLMinutes: 30,
		},
		Export: ExportConfig{
			Enabled: false,
			Dir:     "data",
			Format:  "csv",
			Append:  false,
			S3: S3Config{
				Endpoint:       "http://localhost:9000",
				Region:         "us-east-1",
				Bucket:         "courtbot-exports",
				UseSSL:         false,
				ForcePathStyle: true,
				Prefix:         "exports",
			},
		},
		Notify: NotifyConfig{
			Events:       []string{"arb_detected", "scan_failed"},
			MinProfitPct: 0,
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"export": true,
	"serve":  true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validFormats enumerates the accepted values for ExportConfig.Format.
var validFormats = map[string]bool{
	"csv":   true,
	"excel": true,
	"both":  true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, export, serve, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Scan
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be positive")
	}
	if c.Scan.FetchTimeout.Duration <= 0 {
		errs = append(errs, "scan: fetch_timeout must be positive")
	}
	if c.Scan.MinProfitPct < 0 {
		errs = append(errs, "scan: min_profit_pct must not be negative")
	}
	if c.Scan.TopN < 1 {
		errs = append(errs, "scan: top_n must be >= 1")
	}

	// Sources — at least one adapter must be enabled or every pass fails.
	if !c.Sources.Demo.Enabled && !c.Sources.OddsAPI.Enabled && !c.Sources.Oddsportal.Enabled {
		errs = append(errs, "sources: at least one source must be enabled")
	}
	if c.Sources.Demo.Enabled && len(c.Sources.Demo.Bookmakers) == 0 {
		errs = append(errs, "sources.demo: bookmakers must not be empty when enabled")
	}
	if c.Sources.OddsAPI.Enabled {
		if c.Sources.OddsAPI.APIKey == "" {
			errs = append(errs, "sources.oddsapi: api_key is required when enabled")
		}
		if c.Sources.OddsAPI.BaseURL == "" {
			errs = append(errs, "sources.oddsapi: base_url must not be empty")
		}
	}
	if c.Sources.Oddsportal.Enabled && c.Sources.Oddsportal.URL == "" {
		errs = append(errs, "sources.oddsportal: url must not be empty when enabled")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimitPerMin < 0 {
			errs = append(errs, "server: rate_limit_per_min must not be negative")
		}
		if c.Server.RateLimitPerMin > 0 && !c.Redis.Enabled {
			errs = append(errs, "server: rate_limit_per_min requires redis to be enabled")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.SnapshotTTLMinutes < 0 {
			errs = append(errs, "redis: snapshot_ttl_minutes must not be negative")
		}
	}

	// Export
	exportOn := c.Export.Enabled || strings.EqualFold(c.Mode, "export") || strings.EqualFold(c.Mode, "full")
	if exportOn {
		if !validFormats[strings.ToLower(c.Export.Format)] {
			errs = append(errs, fmt.Sprintf("export: unknown format %q (valid: csv, excel, both)", c.Export.Format))
		}
		if c.Export.Dir == "" {
			errs = append(errs, "export: dir must not be empty")
		}
	}
	if c.Export.S3.Enabled {
		if c.Export.S3.Bucket == "" {
			errs = append(errs, "export.s3: bucket must not be empty when enabled")
		}
		if c.Export.S3.Region == "" {
			errs = append(errs, "export.s3: region must not be empty when enabled")
		}
	}

	// Notify — chat ID and token only work as a pair.
	tgToken := c.Notify.TelegramToken != ""
	tgChat := c.Notify.TelegramChatID != ""
	if tgToken != tgChat {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	if c.Notify.MinProfitPct < 0 {
		errs = append(errs, "notify: min_profit_pct must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
