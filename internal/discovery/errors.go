package discovery

import (
	"fmt"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

type DiscoveryErrorCause string

const (
	ErrCauseNotHTML   = "landing page is not parseable HTML"
	ErrCauseEmptyPage = "landing page is empty"
)

type DiscoveryError struct {
	Message   string
	Retryable bool
	Cause     DiscoveryErrorCause
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error: %s", e.Cause)
}

func (e *DiscoveryError) Severity() failure.Severity {
	// Discovery is an augmentation; losing it never aborts a run.
	return failure.SeverityRecoverable
}

func (e *DiscoveryError) IsRetryable() bool {
	return e.Retryable
}
