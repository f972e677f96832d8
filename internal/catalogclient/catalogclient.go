// Package catalogclient wraps any port.CatalogClient with the fixed
// inter-call delay and linear-backoff retry contract from spec.md §4.5/§5,
// using golang.org/x/time/rate the way the rest of the corpus does for
// outbound-API pacing.
package catalogclient

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

// RateLimited wraps a port.CatalogClient with a fixed minimum inter-call
// delay and bounded linear-backoff retries on transient failure.
type RateLimited struct {
	inner      port.CatalogClient
	limiter    *rate.Limiter
	retryCount int
	backoff    time.Duration
}

// New builds a RateLimited client. delay is the minimum spacing between
// calls (default 250ms, spec.md §4.5); retryCount is the number of retry
// attempts on transient failure (default 3); delay is also used as the
// linear backoff base per spec.md §5 (`delay = base * retry_count`).
func New(inner port.CatalogClient, delay time.Duration, retryCount int) *RateLimited {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &RateLimited{
		inner:      inner,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		retryCount: retryCount,
		backoff:    delay,
	}
}

func (c *RateLimited) Source() model.CatalogSource { return c.inner.Source() }

func (c *RateLimited) Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error) {
	var hits []model.SearchHit
	err := c.withRetry(ctx, "search", func(ctx context.Context) error {
		var err error
		hits, err = c.inner.Search(ctx, title, year)
		return err
	})
	return hits, err
}

func (c *RateLimited) GetDetails(ctx context.Context, id string) (*model.MediaDetails, error) {
	var details *model.MediaDetails
	err := c.withRetry(ctx, "get_details", func(ctx context.Context) error {
		var err error
		details, err = c.inner.GetDetails(ctx, id)
		return err
	})
	return details, err
}

func (c *RateLimited) GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error) {
	var count *int
	err := c.withRetry(ctx, "get_episode_count", func(ctx context.Context) error {
		var err error
		count, err = c.inner.GetEpisodeCount(ctx, seriesID, season)
		return err
	})
	return count, err
}

// withRetry applies the rate limiter, invokes call, and retries on error
// with linear backoff (delay = base * retry_count) up to retryCount times.
func (c *RateLimited) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt < c.retryCount {
			wait := c.backoff * time.Duration(attempt+1)
			log.Printf("catalogclient: %s failed (attempt %d/%d): %v, retrying in %v",
				op, attempt+1, c.retryCount, lastErr, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
