package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	// ErrWriteConflict is returned by a single optimistic write attempt that lost a race
	ErrWriteConflict = errors.New("write conflict")

	// ErrConcurrentUpdate is returned when conflicting writes persisted through every retry
	ErrConcurrentUpdate = errors.New("user was modified concurrently")
)

// RetryConfig bounds the optimistic concurrency retry loop
type RetryConfig struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

// DefaultRetryConfig returns sensible retry defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 8,
		BaseDelay:  5 * time.Millisecond,
	}
}

// RetryOnConflict runs attempt until it succeeds, fails with something other than
// ErrWriteConflict, or the retry budget is spent
func RetryOnConflict(ctx context.Context, cfg RetryConfig, attempt func(ctx context.Context) error) error {
	if cfg.BaseDelay <= 0 {
		cfg = DefaultRetryConfig()
	}

	backoff := retry.WithJitterPercent(20, retry.NewExponential(cfg.BaseDelay))
	backoff = retry.WithMaxRetries(cfg.MaxRetries, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := attempt(ctx)
		if errors.Is(err, ErrWriteConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, ErrWriteConflict) {
		return ErrConcurrentUpdate
	}
	return err
}
