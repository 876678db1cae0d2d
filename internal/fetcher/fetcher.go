package fetcher

import (
	"context"

	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/retry"
)

// Fetcher performs one logical document retrieval: resolve redirects,
// classify the terminal outcome, stream bytes, validate content, write
// to disk. The two concrete strategies (direct HTTP and DOM-discovery
// assisted) are interchangeable behind this contract.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		doc naming.RemoteDocument,
		referer string,
		localPath string,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
