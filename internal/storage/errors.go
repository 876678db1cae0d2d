package storage

import (
	"fmt"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseDiskFull              = "disk is full"
	ErrCauseWriteFailure          = "write failed"
	ErrCausePathError             = "path error"
	ErrCauseContentNotPDF         = "content is not a PDF"
	ErrCauseBodyStreamInterrupted = "body stream interrupted"
	ErrCauseHashComputationFailed = "hash computation failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s", e.Cause)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	case ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	case ErrCausePathError:
		return metadata.CauseStorageFailure
	case ErrCauseContentNotPDF:
		return metadata.CauseContentInvalid
	case ErrCauseBodyStreamInterrupted:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
