package fetcher

import (
	"context"

	"github.com/rohmanhakim/tariff-mirror/internal/discovery"
	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/retry"
)

/*
DomFetcher is the discovery-assisted strategy.

It fulfils the same contract as HttpFetcher, but before each fetch it
consults the discovery index built from the landing page DOM. When the
page advertises a link for the document's filename, that link wins over
the templated URL — this absorbs origin-side drift in the link
structure without touching the naming scheme. Documents the page does
not mention fall back to the predictable URL.

The actual transfer is always delegated to the HTTP strategy; the DOM
never participates past URL selection.
*/

type DomFetcher struct {
	inner *HttpFetcher
	index discovery.Index
}

func NewDomFetcher(
	inner *HttpFetcher,
	index discovery.Index,
) DomFetcher {
	return DomFetcher{
		inner: inner,
		index: index,
	}
}

// Index exposes the discovery index so the scheduler can admit
// documents the landing page advertises beyond the predictable grid.
func (d *DomFetcher) Index() *discovery.Index {
	return &d.index
}

func (d *DomFetcher) Fetch(
	ctx context.Context,
	doc naming.RemoteDocument,
	referer string,
	localPath string,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	if discovered, ok := d.index.Lookup(doc.Filename()); ok {
		doc = naming.NewRemoteDocument(discovered, doc.Filename(), doc.IsMandatory())
	}
	return d.inner.Fetch(ctx, doc, referer, localPath, retryParam)
}
