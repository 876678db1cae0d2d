package fetcher

import (
	"net/url"
)

// HTTP boundary

// Outcome is the terminal classification of one logical document
// retrieval.
type Outcome int

const (
	// OutcomeSuccess: bytes fetched, validated, and persisted.
	OutcomeSuccess Outcome = iota
	// OutcomeAbsent: the origin reports the document does not exist
	// (404, or a redirect into its error page). Expected for
	// speculative grid probes; a data-integrity signal for mandatory
	// documents — that distinction is the scheduler's, not ours.
	OutcomeAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

type FetchResult struct {
	url         url.URL
	localPath   string
	outcome     Outcome
	statusCode  int
	sizeByte    uint64
	contentHash string
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) LocalPath() string {
	return f.localPath
}

func (f *FetchResult) Outcome() Outcome {
	return f.outcome
}

func (f *FetchResult) Code() int {
	return f.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.sizeByte
}

func (f *FetchResult) ContentHash() string {
	return f.contentHash
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	fetchUrl url.URL,
	localPath string,
	outcome Outcome,
	statusCode int,
	sizeByte uint64,
	contentHash string,
) FetchResult {
	return FetchResult{
		url:         fetchUrl,
		localPath:   localPath,
		outcome:     outcome,
		statusCode:  statusCode,
		sizeByte:    sizeByte,
		contentHash: contentHash,
	}
}
