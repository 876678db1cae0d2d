package metadata

import (
	"time"
)

type FetchEvent struct {
	fetchUrl   string
	httpStatus int
	duration   time.Duration
	outcome    string
	sizeByte   uint64
	retryCount int
}

func (f *FetchEvent) FetchURL() string {
	return f.fetchUrl
}

func (f *FetchEvent) HTTPStatus() int {
	return f.httpStatus
}

func (f *FetchEvent) Outcome() string {
	return f.outcome
}

func (f *FetchEvent) SizeByte() uint64 {
	return f.sizeByte
}

func (f *FetchEvent) RetryCount() int {
	return f.retryCount
}

type ErrorEvent struct {
	observedAt  time.Time
	packageName string
	action      string
	cause       ErrorCause
	details     string
	attrs       []Attribute
}

func (e *ErrorEvent) PackageName() string {
	return e.packageName
}

func (e *ErrorEvent) Cause() ErrorCause {
	return e.cause
}

func (e *ErrorEvent) Details() string {
	return e.details
}

func (e *ErrorEvent) Attrs() []Attribute {
	return e.attrs
}

type ArtifactKind string

const (
	ArtifactPDF ArtifactKind = "pdf"
)

type ArtifactEvent struct {
	kind  ArtifactKind
	path  string
	attrs []Attribute
}

func (a *ArtifactEvent) Path() string {
	return a.path
}

func (a *ArtifactEvent) Attrs() []Attribute {
	return a.attrs
}

/*
runStats
  - Represents a terminal, derived summary of a completed mirror run
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after run termination
  - Is recorded exactly once
  - Must not influence scheduling, retries, or run termination
  - Must be constructed without reading metadata
*/
type runStats struct {
	totalDownloaded int
	totalSkipped    int
	totalFailed     int
	durationMs      int64
}

// Attribute is a primitive key/value pair attached to recorded events.
// Only values, never objects with behavior.
type Attribute struct {
	key   AttrKey
	value string
}

type AttrKey string

const (
	AttrURL       AttrKey = "url"
	AttrFilename  AttrKey = "filename"
	AttrWritePath AttrKey = "write_path"
	AttrMessage   AttrKey = "message"
	AttrField     AttrKey = "field"
)

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{key: key, value: value}
}

func (a *Attribute) Key() AttrKey {
	return a.key
}

func (a *Attribute) Value() string {
	return a.value
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - TCP timeouts, DNS resolution failures, connection resets, 5xx.

# CauseBlockingDetected

  - The origin refused service in a way that indicates bot detection
    or rate-limit enforcement: 403, 429, CAPTCHA interstitials.

# CauseContentInvalid

  - Content was fetched but is not a valid PDF document.

# CauseStorageFailure

  - Failure while persisting downloaded artifacts.
  - Disk full, write permission errors, filesystem I/O failures.

# CauseDataIntegrity

  - A document that must exist was reported absent by the origin.
  - Signals a configuration or upstream-contract error, not a data gap.

# CauseRetryFailure

  - All retry attempts for a retryable failure were exhausted.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseBlockingDetected
	CauseContentInvalid
	CauseStorageFailure
	CauseDataIntegrity
	CauseRetryFailure
)
