package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

// RetryPolicy bounds how often a unit of work is re-run after a transient
// write conflict. Stock conflicts are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   20 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	}
}

// backoff doubles the base delay per attempt and picks a point in its upper half.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	half := int64(d / 2)
	return time.Duration(half + rand.Int63n(half+1))
}

func withRetry(ctx context.Context, policy RetryPolicy, op string, fn func() error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, port.ErrWriteConflict) {
			return err
		}
		if attempt == attempts {
			break
		}

		metrics.BookingRetries.Inc()
		delay := policy.backoff(attempt)
		log.WithFields(log.Fields{
			"op":      op,
			"attempt": attempt,
			"delay":   delay.String(),
		}).WithError(err).Debug("write conflict, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return domain.Retryable(attempts, err)
}
