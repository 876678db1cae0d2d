package session

import (
	"fmt"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

type SessionErrorCause string

const (
	ErrCauseJarInit       = "cookie jar initialization failed"
	ErrCauseWarmUpRequest = "warm-up request failed"
)

type SessionError struct {
	Message   string
	Retryable bool
	Cause     SessionErrorCause
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error: %s", e.Cause)
}

func (e *SessionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *SessionError) IsRetryable() bool {
	return e.Retryable
}
