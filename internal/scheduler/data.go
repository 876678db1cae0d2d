package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// State of the batch run lifecycle.
type State int

const (
	StateIdle State = iota
	StateWarmingUp
	StateEnumeratingMandatory
	StateEnumeratingGrid
	StateFinalizing
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarmingUp:
		return "warming_up"
	case StateEnumeratingMandatory:
		return "enumerating_mandatory"
	case StateEnumeratingGrid:
		return "enumerating_grid"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ItemFailure carries enough detail to re-run just the failed subset.
type ItemFailure struct {
	filename string
	url      string
	kind     string
}

func NewItemFailure(filename, url, kind string) ItemFailure {
	return ItemFailure{
		filename: filename,
		url:      url,
		kind:     kind,
	}
}

func (i *ItemFailure) Filename() string {
	return i.filename
}

func (i *ItemFailure) URL() string {
	return i.url
}

func (i *ItemFailure) Kind() string {
	return i.kind
}

/*
RunReport
  - The aggregated result of one batch run
  - Counters are mutated as each document is processed
  - Finalized exactly once, at run termination
  - Never persisted between runs: resume state is reconstructed from the
    output directory's filenames, not from a previous report
*/
type RunReport struct {
	runId      string
	finalState State
	downloaded int
	skipped    int
	failed     int
	failures   []ItemFailure
	duration   time.Duration
}

func (r *RunReport) RunID() string {
	return r.runId
}

func (r *RunReport) FinalState() State {
	return r.finalState
}

func (r *RunReport) Downloaded() int {
	return r.downloaded
}

func (r *RunReport) Skipped() int {
	return r.skipped
}

func (r *RunReport) Failed() int {
	return r.failed
}

func (r *RunReport) Failures() []ItemFailure {
	return r.failures
}

func (r *RunReport) Duration() time.Duration {
	return r.duration
}

// Summary renders the report for the end of a run.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s %s: %d downloaded, %d skipped, %d failed (%.1fs)\n",
		r.runId, r.finalState, r.downloaded, r.skipped, r.failed, r.duration.Seconds())
	for _, f := range r.failures {
		fmt.Fprintf(&b, "  failed %s (%s): %s\n", f.filename, f.kind, f.url)
	}
	return b.String()
}
