package metadata_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_EventsKeepArrivalOrder(t *testing.T) {
	recorder := metadata.NewRecorder("run-under-test")
	assert.Equal(t, "run-under-test", recorder.RunID())

	recorder.RecordFetch("https://tariff.example.org/2022/0101_2022e.pdf", 200, time.Second, "success", 1024, 0)
	recorder.RecordFetch("https://tariff.example.org/2022/0102_2022e.pdf", 404, time.Second, "absent", 0, 0)

	events := recorder.FetchEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "success", events[0].Outcome())
	assert.Equal(t, "absent", events[1].Outcome())
	assert.Equal(t, 404, events[1].HTTPStatus())
}

func TestRecorder_ErrorEventsCarryAttributes(t *testing.T) {
	recorder := metadata.NewRecorder("run-under-test")

	recorder.RecordError(
		time.Now(),
		"fetcher",
		"HttpFetcher.Fetch",
		metadata.CauseBlockingDetected,
		"origin refused with 403",
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, "https://tariff.example.org/2022/0101_2022e.pdf"),
		},
	)

	events := recorder.ErrorEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "fetcher", events[0].PackageName())
	assert.Equal(t, metadata.CauseBlockingDetected, events[0].Cause())

	attrs := events[0].Attrs()
	require.Len(t, attrs, 1)
	assert.Equal(t, metadata.AttrURL, attrs[0].Key())
	assert.Equal(t, "https://tariff.example.org/2022/0101_2022e.pdf", attrs[0].Value())
}

func TestNoopSink_DiscardsEverything(t *testing.T) {
	var sink metadata.MetadataSink = &metadata.NoopSink{}
	sink.RecordFetch("url", 200, time.Second, "success", 0, 0)
	sink.RecordError(time.Now(), "pkg", "action", metadata.CauseUnknown, "details", nil)
	sink.RecordArtifact(metadata.ArtifactPDF, "path", nil)
}
