package session

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

/*
Responsibilities
- Hold the cookie jar for the lifetime of one run
- Rotate a realistic user agent per request
- Produce the browser header posture applied to every outbound request
- Perform the warm-up visit to the edition's landing page

Rationale

The origin fingerprints clients. A consistent browsing posture (warm-up
visit, carried cookies, referer chaining) keeps the block and
rate-limit incidence down. Session state is scoped to one run instance,
never process-wide, so sequential editions do not cross-contaminate.

The session never decides control flow; it only shapes requests and
observes responses through the shared cookie jar.
*/

type Session struct {
	metadataSink metadata.MetadataSink
	jar          *cookiejar.Jar
	client       *http.Client
	rng          *rand.Rand
	pinnedAgent  string
}

// NewSession builds a run-scoped session. The returned client carries
// the cookie jar and has automatic redirect following disabled: the
// fetcher walks redirect chains itself so it can chain referers and
// classify error-page hops.
//
// When pinnedAgent is non-empty it overrides the rotating pool.
func NewSession(
	metadataSink metadata.MetadataSink,
	timeout time.Duration,
	randomSeed int64,
	pinnedAgent string,
) (Session, failure.ClassifiedError) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return Session{}, &SessionError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseJarInit,
		}
	}

	seed := randomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return Session{
		metadataSink: metadataSink,
		jar:          jar,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		rng:         rand.New(rand.NewSource(seed)),
		pinnedAgent: pinnedAgent,
	}, nil
}

// Client returns the run's HTTP client. Every component talking to the
// origin must go through it so cookies accumulate in one jar.
func (s *Session) Client() *http.Client {
	return s.client
}

// UserAgent draws one agent from the pool (or returns the pinned one).
func (s *Session) UserAgent() string {
	if s.pinnedAgent != "" {
		return s.pinnedAgent
	}
	return userAgentPool[s.rng.Intn(len(userAgentPool))]
}

// Headers returns the header bundle for one outbound request: rotated
// user agent, standard browser Accept/Sec-Fetch fields, and the given
// referer. Cookies ride on the client's jar, not on this bundle.
func (s *Session) Headers(referer string) HeaderSet {
	headers := HeaderSet{
		"User-Agent":                s.UserAgent(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,*/*;q=0.8",
		"Accept-Language":           "en-CA,en-US;q=0.8,en;q=0.5",
		// Accept-Encoding is left to the transport: setting it by hand
		// turns off Go's transparent gzip decoding, and the body checks
		// downstream need decoded bytes.
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-origin",
	}
	if referer != "" {
		headers["Referer"] = referer
	} else {
		headers["Sec-Fetch-Site"] = "none"
	}
	return headers
}

// Apply stamps the header bundle onto a request.
func (s *Session) Apply(req *http.Request, referer string) {
	for key, value := range s.Headers(referer) {
		req.Header.Set(key, value)
	}
}

// WarmUp issues a GET to the edition's human-facing landing page before
// any asset fetch, harvesting Set-Cookie values into the jar. It
// returns the landing URL for use as the first referer, along with the
// page body (the discovery engine reuses it so the landing page is
// fetched only once).
//
// A warm-up failure is recoverable: the run proceeds with a best-effort
// referer and an empty jar.
func (s *Session) WarmUp(ctx context.Context, landingURL url.URL) (string, []byte, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, landingURL.String(), nil)
	if err != nil {
		return "", nil, s.warmUpError(landingURL, err)
	}
	s.Apply(req, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, s.warmUpError(landingURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, s.warmUpError(landingURL, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, s.warmUpError(landingURL, err)
	}

	return landingURL.String(), body, nil
}

func (s *Session) warmUpError(landingURL url.URL, err error) failure.ClassifiedError {
	sessionErr := &SessionError{
		Message:   fmt.Sprintf("%v", err),
		Retryable: true,
		Cause:     ErrCauseWarmUpRequest,
	}
	s.metadataSink.RecordError(
		time.Now(),
		"session",
		"Session.WarmUp",
		metadata.CauseNetworkFailure,
		sessionErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, landingURL.String()),
		},
	)
	return sessionErr
}
