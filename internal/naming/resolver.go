package naming

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

/*
Responsibilities
- Map an edition plus a document identifier to its canonical remote URL
- Map the same pair to its canonical local filename
- Invert coordinate filenames back into (chapter, heading)

Every function here is pure and total over valid inputs. The
identifier → (URL, filename) mapping is a bijection: distinct
identifiers never collide, and ParseCoordinateFilename recovers exactly
the coordinate that produced a filename. Resume-cursor reconstruction
and discovery-link classification both depend on that inverse.
*/

// editionToken is the placeholder substituted in named-document templates.
const editionToken = "{EDITION}"

// landingPage is the human-facing menu page of one edition; it is the
// warm-up target and the referer for the first asset fetch.
const landingPage = "menu-eng.html"

// ResolveFilename returns the canonical local filename for a document.
// Coordinate documents follow {chapter:02d}{heading}_{edition}e.pdf;
// named documents substitute the edition year into their template.
func ResolveFilename(edition Edition, doc DocumentIdentifier) string {
	if doc.IsNamed() {
		return strings.ReplaceAll(doc.template, editionToken, strconv.Itoa(int(edition)))
	}
	return fmt.Sprintf("%02d%s_%de.pdf", doc.chapter, doc.heading, edition)
}

// ResolveURL returns the canonical remote URL for a document:
// {base}/{edition}/{filename}.
func ResolveURL(base url.URL, edition Edition, doc DocumentIdentifier) url.URL {
	resolved := base
	resolved.Path = joinPath(base.Path, strconv.Itoa(int(edition)), ResolveFilename(edition, doc))
	return resolved
}

// LandingURL returns the edition's human-facing landing page.
func LandingURL(base url.URL, edition Edition) url.URL {
	resolved := base
	resolved.Path = joinPath(base.Path, strconv.Itoa(int(edition)), landingPage)
	return resolved
}

// Resolve bundles URL and filename resolution into a RemoteDocument.
func Resolve(base url.URL, edition Edition, doc DocumentIdentifier) RemoteDocument {
	return NewRemoteDocument(
		ResolveURL(base, edition, doc),
		ResolveFilename(edition, doc),
		doc.IsMandatory(),
	)
}

// ParseCoordinateFilename inverts ResolveFilename for coordinate
// documents of the given edition. Returns ok=false for anything that is
// not a coordinate filename of that edition (named documents included).
func ParseCoordinateFilename(edition Edition, filename string) (chapter int, heading string, ok bool) {
	suffix := fmt.Sprintf("_%de.pdf", edition)
	if !strings.HasSuffix(filename, suffix) {
		return 0, "", false
	}

	coordinate := strings.TrimSuffix(filename, suffix)
	if len(coordinate) != 4 || !isDigits(coordinate) {
		return 0, "", false
	}

	chapter, err := strconv.Atoi(coordinate[:2])
	if err != nil {
		return 0, "", false
	}
	heading = coordinate[2:]

	if chapter < ChapterMin || chapter > ChapterMax {
		return 0, "", false
	}
	headingNum, err := strconv.Atoi(heading)
	if err != nil || headingNum < HeadingMin || headingNum > HeadingMax {
		return 0, "", false
	}

	return chapter, heading, true
}

// HeadingLabel renders a heading index as the two-digit form the origin
// uses ("1" becomes "01").
func HeadingLabel(heading int) string {
	return fmt.Sprintf("%02d", heading)
}

// DefaultNamedTemplates is the set of documents the origin publishes for
// every edition. These are mandatory: absence aborts a run.
func DefaultNamedTemplates() []string {
	return []string{
		"introduction_{EDITION}e.pdf",
		"gir_{EDITION}e.pdf",
		"abbreviations_{EDITION}e.pdf",
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func joinPath(segments ...string) string {
	var parts []string
	for _, segment := range segments {
		trimmed := strings.Trim(segment, "/")
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return "/" + strings.Join(parts, "/")
}
