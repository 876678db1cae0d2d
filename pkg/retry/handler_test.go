package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/retry"
	"github.com/rohmanhakim/tariff-mirror/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubError is a classified error with an explicit retryable flag.
type stubError struct {
	message   string
	retryable bool
}

func (e *stubError) Error() string {
	return e.message
}

func (e *stubError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *stubError) IsRetryable() bool {
	return e.retryable
}

// opaqueError carries no retryable classification at all.
type opaqueError struct{}

func (e *opaqueError) Error() string {
	return "opaque"
}

func (e *opaqueError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func fastRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 10*time.Millisecond),
	)
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.Retry(context.Background(), fastRetryParam(3), func() (string, failure.ClassifiedError) {
		calls++
		return "ok", nil
	})

	require.Nil(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesRetryableUntilSuccess(t *testing.T) {
	calls := 0
	result, err := retry.Retry(context.Background(), fastRetryParam(5), func() (int, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return 0, &stubError{message: "transient", retryable: true}
		}
		return 99, nil
	})

	require.Nil(t, err)
	assert.Equal(t, 99, result)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	terminal := &stubError{message: "blocked", retryable: false}
	_, err := retry.Retry(context.Background(), fastRetryParam(5), func() (int, failure.ClassifiedError) {
		calls++
		return 0, terminal
	})

	require.NotNil(t, err)
	assert.Equal(t, terminal, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_UnclassifiedErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := retry.Retry(context.Background(), fastRetryParam(5), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &opaqueError{}
	})

	require.NotNil(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustionReturnsRetryError(t *testing.T) {
	calls := 0
	_, err := retry.Retry(context.Background(), fastRetryParam(3), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &stubError{message: "still failing", retryable: true}
	})

	require.NotNil(t, err)
	assert.Equal(t, 3, calls)

	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, retry.RetryErrorCause(retry.ErrExhaustedAttempts), retryErr.Cause)
	assert.Equal(t, failure.SeverityRecoverable, retryErr.Severity())
}

func TestRetry_ZeroAttemptsRejected(t *testing.T) {
	_, err := retry.Retry(context.Background(), fastRetryParam(0), func() (int, failure.ClassifiedError) {
		t.Fatal("fn must not run with zero attempts")
		return 0, nil
	})

	require.NotNil(t, err)
	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, retry.RetryErrorCause(retry.ErrZeroAttempt), retryErr.Cause)
}

func TestRetry_CancelledContextInterruptsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	param := retry.NewRetryParam(
		0,
		42,
		3,
		timeutil.NewBackoffParam(time.Hour, time.Hour),
	)

	calls := 0
	start := time.Now()
	_, err := retry.Retry(ctx, param, func() (int, failure.ClassifiedError) {
		calls++
		cancel()
		return 0, &stubError{message: "transient", retryable: true}
	})

	require.NotNil(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second, "cancel must interrupt the backoff sleep")
	assert.Equal(t, "transient", err.Error())
}
