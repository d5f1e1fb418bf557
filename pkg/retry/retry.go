package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// StartupConfig is used while waiting for backing services (postgres, redis)
// that may come up after the gallery container.
func StartupConfig() Config {
	return Config{
		MaxRetries:      6,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs operation until it succeeds, returns a Permanent error, the
// retries are exhausted or ctx is done.
func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	retryable := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	attempts := 0
	counted := func() error {
		attempts++
		return operation()
	}

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying",
			"operation", operationName,
			"attempt", attempts,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	if err := backoff.RetryNotify(counted, retryable, notify); err != nil {
		return fmt.Errorf("%s failed after %d attempt(s): %w", operationName, attempts, err)
	}

	if attempts > 1 {
		log.Info("Operation succeeded after retrying", "operation", operationName, "attempts", attempts)
	}
	return nil
}
