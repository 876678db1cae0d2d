package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/rohmanhakim/tariff-mirror/internal/session"
	"github.com/rohmanhakim/tariff-mirror/internal/storage"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/hashutil"
	"github.com/rohmanhakim/tariff-mirror/pkg/retry"
	"github.com/rohmanhakim/tariff-mirror/pkg/urlutil"
)

/*
Responsibilities

- Perform HTTP requests through the run's session
- Apply the browser header posture and timeouts
- Walk redirect chains manually, chaining referers hop to hop
- Classify terminal outcomes
- Stream the body into the storage sink

Fetch Semantics

- Only a 200 response with a valid PDF signature becomes an artifact
- 404, and redirects into the origin's error page, classify as Absent
- 403/429 classify as Blocked
- Redirect chains are bounded at five hops
- All fetches are recorded with metadata

The fetcher never decides whether an Absent document is acceptable;
that is the scheduler's call.
*/

// redirectHopLimit bounds a redirect chain before it classifies as a loop.
const redirectHopLimit = 5

type HttpFetcher struct {
	metadataSink metadata.MetadataSink
	session      *session.Session
	sink         storage.Sink
	hashAlgo     hashutil.HashAlgo
}

func NewHttpFetcher(
	metadataSink metadata.MetadataSink,
	sess *session.Session,
	sink storage.Sink,
	hashAlgo hashutil.HashAlgo,
) HttpFetcher {
	return HttpFetcher{
		metadataSink: metadataSink,
		session:      sess,
		sink:         sink,
		hashAlgo:     hashAlgo,
	}
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	doc naming.RemoteDocument,
	referer string,
	localPath string,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HttpFetcher.Fetch"
	fetchUrl := doc.URL()
	startTime := time.Now()

	result, err := h.fetchWithRetry(ctx, fetchUrl, referer, localPath, retryParam)

	duration := time.Since(startTime)

	var statusCode int
	var sizeByte uint64
	var retryCount int
	outcome := "error"

	if err != nil {
		// Extract retry count from error if it's a RetryError
		var retryErr *retry.RetryError
		if errors.As(err, &retryErr) {
			retryCount = retryParam.MaxAttempts
		}
	} else {
		statusCode = result.Code()
		sizeByte = result.SizeByte()
		outcome = result.Outcome().String()
	}

	h.metadataSink.RecordFetch(
		fetchUrl.String(),
		statusCode,
		duration,
		outcome,
		sizeByte,
		retryCount,
	)

	if err != nil {
		if errors.Is(err, &retry.RetryError{}) {
			h.recordRetryError(callerMethod, fetchUrl, err)
		} else {
			h.recordFetchError(callerMethod, fetchUrl, err)
		}
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HttpFetcher) fetchWithRetry(
	ctx context.Context,
	fetchUrl url.URL,
	referer string,
	localPath string,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchUrl, referer, localPath)
	}

	result, retryErr := retry.Retry(ctx, retryParam, fetchTask)

	if retryErr != nil {
		// The task error passes through untouched so the scheduler can
		// classify it; only exhaustion is wrapped as a RetryError.
		var fetchErr *FetchError
		if errors.As(retryErr, &fetchErr) {
			return FetchResult{}, fetchErr
		}

		return FetchResult{}, retryErr
	}

	return result, nil
}

// performFetch executes one attempt: issue the GET, walk redirects up
// to the hop limit with the previous hop as referer, and classify the
// terminal response.
func (h *HttpFetcher) performFetch(
	ctx context.Context,
	fetchUrl url.URL,
	referer string,
	localPath string,
) (FetchResult, failure.ClassifiedError) {
	currentURL := fetchUrl
	currentReferer := referer

	for hop := 0; hop <= redirectHopLimit; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, currentURL.String(), nil)
		if err != nil {
			return FetchResult{}, &FetchError{
				Message: fmt.Sprintf("failed to create request: %v", err),
				Cause:   ErrCauseNetworkFailure,
			}
		}
		h.session.Apply(req, currentReferer)

		resp, err := h.session.Client().Do(req)
		if err != nil {
			cause := FetchErrorCause(ErrCauseNetworkFailure)
			if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
				cause = ErrCauseTimeout
			}
			return FetchResult{}, &FetchError{
				Message: fmt.Sprintf("request failed: %v", err),
				Cause:   cause,
			}
		}

		// Redirect: resolve Location, classify error-page targets as
		// Absent, otherwise follow with the current URL as referer.
		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			resolved, resolveErr := urlutil.ResolveRedirect(currentURL, location)
			if resolveErr != nil {
				return FetchResult{}, &FetchError{
					Message: fmt.Sprintf("unusable Location %q: %v", location, resolveErr),
					Cause:   ErrCauseNetworkFailure,
				}
			}

			if urlutil.IsErrorPagePath(resolved.Path) {
				return FetchResult{
					url:        currentURL,
					outcome:    OutcomeAbsent,
					statusCode: resp.StatusCode,
				}, nil
			}

			currentReferer = currentURL.String()
			currentURL = resolved
			continue
		}

		result, fetchErr := h.classifyTerminal(resp, currentURL, localPath)
		resp.Body.Close()
		return result, fetchErr
	}

	return FetchResult{}, &FetchError{
		Message: fmt.Sprintf("more than %d redirect hops from %s", redirectHopLimit, fetchUrl.String()),
		Cause:   ErrCauseRedirectLimitExceeded,
	}
}

// classifyTerminal maps a non-redirect response to an outcome. On 200
// the body streams straight into the sink, which owns magic validation
// and partial-file cleanup.
func (h *HttpFetcher) classifyTerminal(
	resp *http.Response,
	currentURL url.URL,
	localPath string,
) (FetchResult, failure.ClassifiedError) {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return FetchResult{
			url:        currentURL,
			outcome:    OutcomeAbsent,
			statusCode: resp.StatusCode,
		}, nil

	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("origin refused with %d", resp.StatusCode),
			Cause:   ErrCauseBlocked,
		}

	case resp.StatusCode != http.StatusOK:
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
			Cause:   causeForStatus(resp.StatusCode),
		}
	}

	writeResult, err := h.sink.Write(localPath, resp.Body, h.hashAlgo)
	if err != nil {
		var storageErr *storage.StorageError
		if errors.As(err, &storageErr) {
			switch storageErr.Cause {
			case storage.ErrCauseContentNotPDF:
				return FetchResult{}, &FetchError{
					Message: storageErr.Message,
					Cause:   ErrCauseInvalidContent,
				}
			case storage.ErrCauseBodyStreamInterrupted:
				return FetchResult{}, &FetchError{
					Message: storageErr.Message,
					Cause:   ErrCauseReadResponseBodyError,
				}
			}
		}
		// Environment-level storage failures pass through unchanged.
		return FetchResult{}, err
	}

	return FetchResult{
		url:         currentURL,
		localPath:   writeResult.Path(),
		outcome:     OutcomeSuccess,
		statusCode:  resp.StatusCode,
		sizeByte:    writeResult.SizeByte(),
		contentHash: writeResult.ContentHash(),
	}, nil
}

func causeForStatus(status int) FetchErrorCause {
	if status >= 500 {
		return ErrCauseRequest5xx
	}
	return ErrCauseRequestUnexpected
}

func (h *HttpFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HttpFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}
