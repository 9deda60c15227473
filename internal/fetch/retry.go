package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds how often a fetch is reattempted and how long to
// wait between attempts. Backoff receives the 1-based number of the
// attempt that just failed.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// LinearBackoff waits base*n after the n-th failed attempt.
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// WithRetry fetches url, reattempting up to the policy's bound. A
// blocked page (nil, nil) consumes a retry attempt like any other
// transient failure; interstitials often clear on a later visit. Only
// after exhaustion is the blocked signal handed back, still as
// (nil, nil) so callers can tell it apart from broken fetch mechanics.
func WithRetry(ctx context.Context, f Fetcher, url string, policy RetryPolicy, logger *zap.Logger) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		page, err := f.Fetch(ctx, url)
		if err == nil && page != nil {
			return page, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}
		if err != nil {
			logger.Warn("fetch failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			logger.Warn("page blocked, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Backoff(attempt)):
		}
	}
	return nil, lastErr
}
