// Package retry runs operations with bounded exponential backoff and jitter.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

type Policy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries  int
	BaseBackoff time.Duration
	// MaxBackoff caps a single wait before jitter. Zero means no cap.
	MaxBackoff time.Duration
}

// Backoff returns the wait before the given retry (1-based): BaseBackoff
// doubled per retry, capped, plus up to half of it as jitter.
func (p Policy) Backoff(retry int) time.Duration {
	if retry < 1 || p.BaseBackoff <= 0 {
		return 0
	}
	shift := min(retry-1, 30)
	d := p.BaseBackoff << shift
	if d <= 0 || (p.MaxBackoff > 0 && d > p.MaxBackoff) {
		d = p.MaxBackoff
	}
	return d + time.Duration(rand.Int64N(int64(d)/2+1))
}

// Do calls fn until it succeeds, retryable rejects its error, the retries run
// out or ctx is done. A nil retryable retries every error. The final error of
// fn is returned unchanged; a cancelled wait wraps it.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= max(p.MaxRetries, 0); attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.Backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, lastErr)
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
