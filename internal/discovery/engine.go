package discovery

import (
	"bytes"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/urlutil"
)

/*
Responsibilities
- Parse the edition's landing page into a DOM tree
- Extract candidate document links (anchors pointing at PDFs)
- Resolve each href against the page URL into an absolute form

The engine supplements the predictable URL grid: when the origin's link
structure drifts from the template scheme, the links it actually
publishes win. The engine treats the DOM as a remote evaluation
sandbox — queries go in, primitive results (filename, href) come out,
and no DOM state is shared with the rest of the pipeline.

Discovery never fetches anything itself; the landing page bytes come
from the session warm-up.
*/

type Engine struct {
	metadataSink metadata.MetadataSink
}

func NewEngine(
	metadataSink metadata.MetadataSink,
) Engine {
	return Engine{
		metadataSink: metadataSink,
	}
}

// ExtractLinks builds an Index of every PDF the landing page links to,
// keyed by filename.
func (e *Engine) ExtractLinks(pageURL url.URL, htmlBytes []byte) (Index, failure.ClassifiedError) {
	index, err := extractLinks(pageURL, htmlBytes)
	if err != nil {
		e.metadataSink.RecordError(
			time.Now(),
			"discovery",
			"Engine.ExtractLinks",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL.String()),
			},
		)
		return NewIndex(), err
	}
	return index, nil
}

func extractLinks(pageURL url.URL, htmlBytes []byte) (Index, failure.ClassifiedError) {
	index := NewIndex()

	if len(htmlBytes) == 0 {
		return index, &DiscoveryError{
			Message:   "zero-byte landing page",
			Retryable: false,
			Cause:     ErrCauseEmptyPage,
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return index, &DiscoveryError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, exists := anchor.Attr("href")
		if !exists {
			return
		}
		ref, parseErr := url.Parse(strings.TrimSpace(href))
		if parseErr != nil {
			return
		}

		// suffix check runs on the resolved path so query strings and
		// fragments on the href do not hide a PDF link
		resolved := urlutil.Canonicalize(*pageURL.ResolveReference(ref))
		if !strings.HasSuffix(strings.ToLower(resolved.Path), ".pdf") {
			return
		}
		filename := path.Base(resolved.Path)
		if filename == "" || filename == "." || filename == "/" {
			return
		}

		index.add(filename, resolved)
	})

	return index, nil
}
