package frontier

import "github.com/rohmanhakim/tariff-mirror/internal/naming"

// Source records which enumeration phase produced a candidate.
type Source int

const (
	SourceMandatory Source = iota
	SourceDiscovery
	SourceGrid
)

func (s Source) String() string {
	switch s {
	case SourceMandatory:
		return "mandatory"
	case SourceDiscovery:
		return "discovery"
	case SourceGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// AdmissionCandidate is one document admitted into the fetch sequence.
// Only the scheduler constructs candidates; downstream stages never see
// frontier types.
type AdmissionCandidate struct {
	doc      naming.DocumentIdentifier
	filename string
	source   Source
}

func NewAdmissionCandidate(
	doc naming.DocumentIdentifier,
	filename string,
	source Source,
) AdmissionCandidate {
	return AdmissionCandidate{
		doc:      doc,
		filename: filename,
		source:   source,
	}
}

func (a *AdmissionCandidate) Document() naming.DocumentIdentifier {
	return a.doc
}

func (a *AdmissionCandidate) Filename() string {
	return a.filename
}

func (a *AdmissionCandidate) Source() Source {
	return a.source
}
