package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	s3blob "github.com/courtedge/courtbot/internal/blob/s3"
	"github.com/courtedge/courtbot/internal/cache/memory"
	"github.com/courtedge/courtbot/internal/cache/redis"
	"github.com/courtedge/courtbot/internal/config"
	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/export"
	"github.com/courtedge/courtbot/internal/notify"
	"github.com/courtedge/courtbot/internal/sources"
	"github.com/courtedge/courtbot/internal/sources/demo"
	"github.com/courtedge/courtbot/internal/sources/oddsapi"
	"github.com/courtedge/courtbot/internal/sources/oddsportal"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Sources are the enabled adapters, already wrapped with the shared
	// rate-limit, retry, and timeout decorators.
	Sources []domain.Source

	// Store holds the latest aggregation snapshot: Redis when enabled so
	// several processes share one pipeline, in-process memory otherwise.
	Store domain.SnapshotStore

	// Locker serializes passes across processes; nil without Redis.
	Locker domain.ScanLocker

	// RateLimiter backs the API request limiter; nil without Redis.
	RateLimiter domain.RateLimiter

	// Exporter writes snapshots to the configured formats; nil when
	// exporting is off for the selected mode.
	Exporter *export.Manager

	// Notifier fans operator alerts out to the configured channels.
	Notifier *notify.Notifier
}

// SourceNames lists the wired adapters for status reporting.
func (d *Dependencies) SourceNames() []string {
	names := make([]string, len(d.Sources))
	for i, src := range d.Sources {
		names[i] = src.Name()
	}
	return names
}

// exportsEnabled returns true when the mode or configuration asks for file
// exports.
func exportsEnabled(cfg *config.Config) bool {
	if cfg.Export.Enabled {
		return true
	}
	switch strings.ToLower(cfg.Mode) {
	case "export", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, opts Options) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Sources ---
	srcs, err := buildSources(cfg, opts, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Sources = srcs

	// --- Snapshot store (Redis when enabled, process memory otherwise) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		ttl := time.Duration(cfg.Redis.SnapshotTTLMinutes) * time.Minute
		deps.Store = redis.NewSnapshotStore(redisClient, ttl)
		deps.Locker = redis.NewLocker(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	} else {
		deps.Store = memory.NewSnapshotStore(0)
	}

	// --- Exporters ---
	if exportsEnabled(cfg) {
		var uploader *export.S3Uploader
		if cfg.Export.S3.Enabled {
			s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
				Endpoint:       cfg.Export.S3.Endpoint,
				Region:         cfg.Export.S3.Region,
				Bucket:         cfg.Export.S3.Bucket,
				AccessKey:      cfg.Export.S3.AccessKey,
				SecretKey:      cfg.Export.S3.SecretKey,
				UseSSL:         cfg.Export.S3.UseSSL,
				ForcePathStyle: cfg.Export.S3.ForcePathStyle,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: s3: %w", err)
			}
			uploader = export.NewS3Uploader(s3blob.NewWriter(s3Client), cfg.Export.S3.Prefix, logger)
		}

		manager, err := export.NewManager(export.Options{
			Dir:          cfg.Export.Dir,
			Format:       strings.ToLower(cfg.Export.Format),
			Filename:     opts.OutputFile,
			Append:       cfg.Export.Append,
			Summary:      true,
			Calculations: cfg.Scan.Calculations,
		}, uploader, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: export: %w", err)
		}
		deps.Exporter = manager
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildSources constructs the enabled adapters and applies the shared fetch
// discipline: each attempt is bounded by the fetch timeout and spaced by the
// rate limit, and failed fetches retry with exponential backoff.
func buildSources(cfg *config.Config, opts Options, logger *slog.Logger) ([]domain.Source, error) {
	var srcs []domain.Source

	if cfg.Sources.Demo.Enabled {
		srcs = append(srcs, demo.New(demo.Config{
			Bookmakers: cfg.Sources.Demo.Bookmakers,
			Seed:       cfg.Sources.Demo.Seed,
		}))
	}
	if cfg.Sources.OddsAPI.Enabled {
		srcs = append(srcs, oddsapi.New(oddsapi.Config{
			BaseURL: cfg.Sources.OddsAPI.BaseURL,
			APIKey:  cfg.Sources.OddsAPI.APIKey,
			Sports:  cfg.Sources.OddsAPI.Sports,
			Regions: cfg.Sources.OddsAPI.Regions,
			Timeout: cfg.Sources.OddsAPI.Timeout.Duration,
		}, logger))
	}
	if cfg.Sources.Oddsportal.Enabled {
		srcs = append(srcs, oddsportal.New(oddsportal.Config{
			URL:      cfg.Sources.Oddsportal.URL,
			Headless: cfg.Sources.Oddsportal.Headless,
			Timeout:  cfg.Sources.Oddsportal.Timeout.Duration,
			Selectors: oddsportal.Selectors{
				MatchRow:   cfg.Sources.Oddsportal.Selectors.MatchRow,
				Player:     cfg.Sources.Oddsportal.Selectors.Player,
				Odds:       cfg.Sources.Oddsportal.Selectors.Odds,
				Tournament: cfg.Sources.Oddsportal.Selectors.Tournament,
				Date:       cfg.Sources.Oddsportal.Selectors.Date,
				Time:       cfg.Sources.Oddsportal.Selectors.Time,
			},
		}, logger))
	}

	if opts.Source != "" {
		var kept []domain.Source
		for _, src := range srcs {
			if strings.EqualFold(src.Name(), opts.Source) {
				kept = append(kept, src)
			}
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("wire: source %q is not enabled (enabled: %s)",
				opts.Source, strings.Join(sourceNames(srcs), ", "))
		}
		srcs = kept
	}

	for i, src := range srcs {
		src = sources.WithTimeout(src, cfg.Scan.FetchTimeout.Duration)
		if cfg.Sources.RateLimit.Duration > 0 {
			src = sources.WithRateLimit(src, cfg.Sources.RateLimit.Duration)
		}
		if cfg.Sources.MaxRetries > 1 {
			src = sources.WithRetry(src, cfg.Sources.MaxRetries, cfg.Sources.RetryBackoff.Duration, logger)
		}
		srcs[i] = src
	}
	return srcs, nil
}

func sourceNames(srcs []domain.Source) []string {
	names := make([]string, len(srcs))
	for i, src := range srcs {
		names[i] = src.Name()
	}
	return names
}
