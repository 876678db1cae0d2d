package naming

import "net/url"

// Edition is an integer year identifying one release of the tariff
// corpus (e.g., 2022). Immutable once created; selects the URL
// namespace and the output subdirectory.
type Edition int

// Valid coordinate ranges of the nomenclature. Chapters 77, and a
// handful of headings inside real chapters, are unpopulated; the grid
// walk probes them speculatively.
const (
	ChapterMin = 1
	ChapterMax = 97
	HeadingMin = 1
	HeadingMax = 99
)

// DocumentIdentifier addresses exactly one remote document and one
// local asset. It is either a named document (fixed template string
// with the edition substituted in) or a coordinate document addressed
// by (chapter, heading).
type DocumentIdentifier struct {
	template  string
	chapter   int
	heading   string
	mandatory bool
}

// NewNamedDocument creates an identifier for a fixed document such as
// "introduction_{EDITION}e.pdf". Named documents are mandatory: the
// origin reporting them absent is a data-integrity error.
func NewNamedDocument(template string) DocumentIdentifier {
	return DocumentIdentifier{
		template:  template,
		mandatory: true,
	}
}

// NewCoordinateDocument creates an identifier for a (chapter, heading)
// grid probe. Coordinate documents are speculative: absence is an
// expected non-match.
//
// Callers must respect the valid ranges; out-of-range coordinates are a
// contract violation, not a runtime error.
func NewCoordinateDocument(chapter int, heading string) DocumentIdentifier {
	return DocumentIdentifier{
		chapter: chapter,
		heading: heading,
	}
}

func (d *DocumentIdentifier) IsNamed() bool {
	return d.template != ""
}

func (d *DocumentIdentifier) IsMandatory() bool {
	return d.mandatory
}

func (d *DocumentIdentifier) Template() string {
	return d.template
}

func (d *DocumentIdentifier) Chapter() int {
	return d.chapter
}

func (d *DocumentIdentifier) Heading() string {
	return d.heading
}

// RemoteDocument is a fully resolved fetch target: the URL plus the
// mandatory/speculative classification carried over from its identifier.
type RemoteDocument struct {
	url       url.URL
	filename  string
	mandatory bool
}

func NewRemoteDocument(fetchUrl url.URL, filename string, mandatory bool) RemoteDocument {
	return RemoteDocument{
		url:       fetchUrl,
		filename:  filename,
		mandatory: mandatory,
	}
}

func (r *RemoteDocument) URL() url.URL {
	return r.url
}

func (r *RemoteDocument) Filename() string {
	return r.filename
}

func (r *RemoteDocument) IsMandatory() bool {
	return r.mandatory
}
