package freshness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/internal/session"
	"github.com/rohmanhakim/tariff-mirror/pkg/fileutil"
)

/*
Responsibilities
- Decide whether an already-present local file needs a re-fetch
- Compare the remote Content-Length against the local byte size via a
  HEAD probe issued with the full session posture

Decision table
- no local file            -> refetch
- HEAD fails or times out  -> refetch
- HEAD status not 200      -> refetch
- Content-Length missing   -> refetch
- sizes differ             -> refetch
- sizes equal              -> skip

Every ambiguous signal resolves toward refetching: an unnecessary
download is recoverable, a silently stale mirror is not.

The probe is still a request to the origin; the scheduler paces it with
a fraction of the standard politeness delay.
*/

type Detector struct {
	metadataSink metadata.MetadataSink
	session      *session.Session
}

func NewDetector(
	metadataSink metadata.MetadataSink,
	sess *session.Session,
) Detector {
	return Detector{
		metadataSink: metadataSink,
		session:      sess,
	}
}

// NeedsRefetch reports whether the document behind fetchUrl must be
// downloaded again. Probed is true when a HEAD actually went out, so
// the caller can account the request for pacing.
func (d *Detector) NeedsRefetch(
	ctx context.Context,
	fetchUrl url.URL,
	referer string,
	localPath string,
) (needed bool, probed bool) {
	if !fileutil.Exists(localPath) {
		return true, false
	}

	localSize, err := fileutil.FileSize(localPath)
	if err != nil {
		return true, false
	}

	remoteSize, ok := d.remoteContentLength(ctx, fetchUrl, referer)
	if !ok {
		return true, true
	}

	return remoteSize != localSize, true
}

// remoteContentLength issues the HEAD probe. ok=false covers every
// anomaly: transport failure, non-200, missing or unparseable length.
func (d *Detector) remoteContentLength(
	ctx context.Context,
	fetchUrl url.URL,
	referer string,
) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fetchUrl.String(), nil)
	if err != nil {
		return 0, false
	}
	d.session.Apply(req, referer)

	resp, err := d.session.Client().Do(req)
	if err != nil {
		d.metadataSink.RecordError(
			time.Now(),
			"freshness",
			"Detector.NeedsRefetch",
			metadata.CauseNetworkFailure,
			fmt.Sprintf("HEAD failed: %v", err),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
		return 0, false
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	if resp.ContentLength < 0 {
		return 0, false
	}

	return resp.ContentLength, true
}
