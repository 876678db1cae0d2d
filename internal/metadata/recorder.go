package metadata

import (
	"time"
)

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Terminal outcome per document
- Content hashes
- Retry counts

Logging Goals
- Debuggable mirror behavior
- Post-run auditability
- Failure diagnostics

Determinism guarantees:
 - Metadata does not affect control flow
 - Jitter is seed-controlled
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence run decisions.
*/

/*
Recorder captures structured run events.
It must not:
- perform I/O decisions
- affect control flow
- impose a logging backend
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single run.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	runId          string
	fetchEvents    []FetchEvent
	errorEvents    []ErrorEvent
	artifactEvents []ArtifactEvent
	finalStats     *runStats
}

func NewRecorder(runId string) Recorder {
	return Recorder{
		runId: runId,
	}
}

func (r *Recorder) RunID() string {
	return r.runId
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.errorEvents = append(r.errorEvents, ErrorEvent{
		observedAt:  observedAt,
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     errorString,
		attrs:       attrs,
	})
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	outcome string,
	sizeByte uint64,
	retryCount int,
) {
	r.fetchEvents = append(r.fetchEvents, FetchEvent{
		fetchUrl:   fetchUrl,
		httpStatus: httpStatus,
		duration:   duration,
		outcome:    outcome,
		sizeByte:   sizeByte,
		retryCount: retryCount,
	})
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.artifactEvents = append(r.artifactEvents, ArtifactEvent{
		kind:  kind,
		path:  path,
		attrs: attrs,
	})
}

/*
RecordFinalRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run execution.
  - MUST be called only after run termination
    (enumeration exhausted or scheduler abort).
  - MUST NOT be called during active enumeration.
  - The provided stats MUST be derived from scheduler state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalRunStats(
	totalDownloaded int,
	totalSkipped int,
	totalFailed int,
	duration time.Duration,
) {
	r.finalStats = &runStats{
		totalDownloaded: totalDownloaded,
		totalSkipped:    totalSkipped,
		totalFailed:     totalFailed,
		durationMs:      duration.Milliseconds(),
	}
}

// Accessors for post-run auditing. Read-only; never consulted by the
// pipeline itself.

func (r *Recorder) FetchEvents() []FetchEvent {
	return r.fetchEvents
}

func (r *Recorder) ErrorEvents() []ErrorEvent {
	return r.errorEvents
}

func (r *Recorder) ArtifactEvents() []ArtifactEvent {
	return r.artifactEvents
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		outcome string,
		sizeByte uint64,
		retryCount int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordFinalRunStats(
		totalDownloaded int,
		totalSkipped int,
		totalFailed int,
		duration time.Duration,
	)
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Scheduler (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	outcome string,
	sizeByte uint64,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
