package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/timeutil"
)

// Retry executes the provided function with retry logic.
// It will retry the function up to MaxAttempts times, applying linear backoff
// with jitter between attempts. Only retryable errors will trigger a retry.
//
// The backoff sleep is a suspension point: cancelling ctx interrupts the
// wait and returns the last observed error.
//
// Type parameter T represents the return type of the function being retried.
func Retry[T any](ctx context.Context, retryParam RetryParam, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message:   "max attempt cannot be 0",
			Cause:     ErrZeroAttempt,
			Retryable: true,
		}
	}

	// Initialize random number generator with the provided seed
	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()

		// Success case: no error
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if the error is retryable
		shouldRetry := isErrorRetryable(err)

		// If not retryable, return immediately
		if !shouldRetry {
			return zero, err
		}

		// If this was the last attempt, break and return exhausted error
		if attempt == retryParam.MaxAttempts {
			break
		}

		// Compute delay for the next retry: attempt * baseBackoff, plus jitter
		backoffDelay := timeutil.LinearBackoffDelay(
			attempt,
			retryParam.Jitter,
			rng,
			retryParam.BackoffParam,
		)

		timer := time.NewTimer(backoffDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	// Return the "zero value" of T and the final error when reached max attempts
	return zero, &RetryError{
		Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:     ErrExhaustedAttempts,
		Retryable: true, // This is recoverable at scheduler level
	}
}

// isErrorRetryable checks if an error should be retried.
// It uses type assertion to check for the Retryable property.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}

	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}

	// Errors that do not self-classify are not retried: the fetch
	// taxonomy marks every transient cause explicitly.
	return false
}
