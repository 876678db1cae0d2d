package scheduler

import (
	"fmt"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

type SchedulerErrorCause string

const (
	// ErrCauseMandatoryAbsent: the origin reported 404 for a document
	// that must exist in every edition. This signals a configuration or
	// upstream-contract error, not a data gap, and halts the run.
	ErrCauseMandatoryAbsent = "mandatory document absent"
	// ErrCauseRunCancelled: the run context was cancelled.
	ErrCauseRunCancelled = "run cancelled"
)

type SchedulerError struct {
	Message string
	Cause   SchedulerErrorCause
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("scheduler error: %s, %s", e.Cause, e.Message)
}

func (e *SchedulerError) Severity() failure.Severity {
	return failure.SeverityFatal
}
