package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseRequest5xx            = "5xx"
	ErrCauseRequestUnexpected     = "unexpected status"
	ErrCauseBlocked               = "blocked by origin"
	ErrCauseRedirectLimitExceeded = "reached redirect limit"
	ErrCauseInvalidContent        = "invalid content"
	ErrCauseReadResponseBodyError = "failed to read response body"
)

type FetchError struct {
	Message string
	Cause   FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

// Severity drives scheduler control flow. A Blocked origin makes
// continuing counterproductive (it would likely worsen the block), so
// it is the one fetch failure classified fatal. Everything else is a
// per-item failure the run survives.
func (e *FetchError) Severity() failure.Severity {
	if e.Cause == ErrCauseBlocked {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

// IsRetryable returns whether this error is retryable.
// Only transient transport conditions and exhausted redirect chains
// are worth another attempt; Blocked and InvalidContent are terminal
// for the item.
func (e *FetchError) IsRetryable() bool {
	switch e.Cause {
	case ErrCauseTimeout,
		ErrCauseNetworkFailure,
		ErrCauseRequest5xx,
		ErrCauseRequestUnexpected,
		ErrCauseRedirectLimitExceeded,
		ErrCauseReadResponseBodyError:
		return true
	default:
		return false
	}
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseRequest5xx,
		ErrCauseRequestUnexpected, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseBlocked:
		return metadata.CauseBlockingDetected
	case ErrCauseInvalidContent:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
