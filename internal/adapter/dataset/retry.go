package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// LoadWithRetry calls Load up to attempts times, backing off exponentially
// between transient remote fetch failures. Local files, client errors, and
// malformed tables fail on the first attempt.
func (s *Source) LoadWithRetry(ctx context.Context, attempts int) ([]domain.Record, domain.LoadStats, error) {
	attempts = max(attempts, 1)
	backoff := s.initialBackoff

	for attempt := 1; ; attempt++ {
		records, stats, err := s.Load(ctx)
		if err == nil || attempt >= attempts || !errors.Is(err, errRetryable) {
			return records, stats, err
		}

		s.metrics.DatasetFetchRetries.Inc()
		s.logger.Warn("dataset fetch failed, retrying",
			"source", s.location,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sleepWithContext(ctx, backoff) {
			return nil, domain.LoadStats{}, &domain.LoadError{Source: s.location, Err: ctx.Err()}
		}
		backoff = nextBackoff(backoff, s.maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
