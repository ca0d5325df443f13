// Package sources provides the bookmaker adapters and the decorators
// shared between them. Retry, rate limiting, and per-fetch timeouts wrap
// any adapter rather than living inside each one, so every source stays a
// plain fetch.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/courtedge/courtbot/internal/domain"
)

// WithRetry wraps src so a failed fetch is retried with exponential
// backoff, doubling after each attempt. The context cancels waiting.
func WithRetry(src domain.Source, attempts int, backoff time.Duration, logger *slog.Logger) domain.Source {
	if attempts < 1 {
		attempts = 1
	}
	return &retrySource{src: src, attempts: attempts, backoff: backoff, logger: logger}
}

type retrySource struct {
	src      domain.Source
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

var _ domain.Source = (*retrySource)(nil)

func (r *retrySource) Name() string { return r.src.Name() }

func (r *retrySource) FetchMatches(ctx context.Context) ([]domain.MatchRecord, error) {
	delay := r.backoff
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		records, err := r.src.FetchMatches(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if attempt == r.attempts {
			break
		}
		r.logger.Warn("fetch failed, retrying",
			slog.String("source", r.src.Name()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", r.attempts),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("sources: %s: %d attempts failed: %w", r.src.Name(), r.attempts, lastErr)
}

// WithRateLimit wraps src so fetches are spaced at least minInterval
// apart. The first fetch passes immediately; later ones wait their turn
// or bail out when the context ends.
func WithRateLimit(src domain.Source, minInterval time.Duration) domain.Source {
	return &rateLimitedSource{
		src:     src,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

type rateLimitedSource struct {
	src     domain.Source
	limiter *rate.Limiter
}

var _ domain.Source = (*rateLimitedSource)(nil)

func (r *rateLimitedSource) Name() string { return r.src.Name() }

func (r *rateLimitedSource) FetchMatches(ctx context.Context) ([]domain.MatchRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sources: %s: rate limit wait: %w", r.src.Name(), err)
	}
	return r.src.FetchMatches(ctx)
}

// WithTimeout wraps src so each fetch runs under its own deadline.
func WithTimeout(src domain.Source, timeout time.Duration) domain.Source {
	return &timeoutSource{src: src, timeout: timeout}
}

type timeoutSource struct {
	src     domain.Source
	timeout time.Duration
}

var _ domain.Source = (*timeoutSource)(nil)

func (t *timeoutSource) Name() string { return t.src.Name() }

func (t *timeoutSource) FetchMatches(ctx context.Context) ([]domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.src.FetchMatches(ctx)
}
