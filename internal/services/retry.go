package services

import (
	"context"
	"time"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/utils"
)

// RetryPolicy holds the locked-update knobs. The values are policy, not
// structure: they load from the environment and default to 3 attempts,
// 50ms initial backoff doubling per retry, and a 5s lock wait per attempt.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	LockTimeout       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    50 * time.Millisecond,
		BackoffMultiplier: 2.0,
		LockTimeout:       5 * time.Second,
	}
}

func LoadRetryPolicy(log *logger.Logger) RetryPolicy {
	def := DefaultRetryPolicy()
	return RetryPolicy{
		MaxAttempts:       utils.GetEnvAsInt("LOCK_RETRY_MAX_ATTEMPTS", def.MaxAttempts, log),
		InitialBackoff:    utils.GetEnvAsDuration("LOCK_RETRY_BACKOFF", def.InitialBackoff, log),
		BackoffMultiplier: utils.GetEnvAsFloat("LOCK_RETRY_BACKOFF_MULTIPLIER", def.BackoffMultiplier, log),
		LockTimeout:       utils.GetEnvAsDuration("LOCK_TIMEOUT", def.LockTimeout, log),
	}
}

// withLockRetry runs op until it succeeds, fails with a non-transient
// error, or the attempt budget runs out. Each op invocation is a fresh
// attempt (fresh transaction, fresh lock acquisition); only a Busy
// classification is retried. Exhaustion surfaces as Conflict.
func withLockRetry(ctx context.Context, log *logger.Logger, policy RetryPolicy, op func(attempt int) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := policy.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		if !apierr.IsBusy(err) {
			return err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		if log != nil {
			log.Debug("Lock contention, backing off before retry", "attempt", attempt, "backoff", backoff)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * policy.BackoffMultiplier)
	}
	return apierr.Conflict("resource is busy after %d attempts, please retry: %v", maxAttempts, lastErr)
}
