package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/tariff-mirror/internal/discovery"
	"github.com/rohmanhakim/tariff-mirror/internal/fetcher"
	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, pageURL string, html string) discovery.Index {
	t.Helper()
	u, err := url.Parse(pageURL)
	require.NoError(t, err)
	engine := discovery.NewEngine(&metadata.NoopSink{})
	index, extractErr := engine.ExtractLinks(*u, []byte(html))
	require.Nil(t, extractErr)
	return index
}

func TestDomFetch_DiscoveredLinkWinsOverTemplate(t *testing.T) {
	var fetchedPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/2022/0101_2022e.pdf", func(w http.ResponseWriter, r *http.Request) {
		t.Error("templated URL must not be used when the landing page advertises another")
	})
	mux.HandleFunc("/relocated/0101_2022e.pdf", func(w http.ResponseWriter, r *http.Request) {
		fetchedPath = r.URL.Path
		w.Write([]byte(pdfBody))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	page := fmt.Sprintf(`<a href="%s/relocated/0101_2022e.pdf">Chapter 1</a>`, server.URL)
	index := buildIndex(t, server.URL+"/2022/menu-eng.html", page)

	inner := newHttpFetcher(t, &metadata.NoopSink{})
	f := fetcher.NewDomFetcher(&inner, index)

	doc := remoteDoc(t, server.URL+"/2022/0101_2022e.pdf", "0101_2022e.pdf", false)
	result, err := f.Fetch(context.Background(), doc, "", filepath.Join(t.TempDir(), "0101_2022e.pdf"), fastRetryParam(3))
	require.Nil(t, err)

	assert.Equal(t, fetcher.OutcomeSuccess, result.Outcome())
	assert.Equal(t, "/relocated/0101_2022e.pdf", fetchedPath)
}

func TestDomFetch_UnadvertisedDocumentFallsBackToTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pdfBody))
	}))
	defer server.Close()

	index := buildIndex(t, server.URL+"/2022/menu-eng.html", "<html><body>no links</body></html>")

	inner := newHttpFetcher(t, &metadata.NoopSink{})
	f := fetcher.NewDomFetcher(&inner, index)

	doc := remoteDoc(t, server.URL+"/2022/0203_2022e.pdf", "0203_2022e.pdf", false)
	result, err := f.Fetch(context.Background(), doc, "", filepath.Join(t.TempDir(), "0203_2022e.pdf"), fastRetryParam(3))
	require.Nil(t, err)
	assert.Equal(t, fetcher.OutcomeSuccess, result.Outcome())
}

func TestDomFetch_IndexAccessor(t *testing.T) {
	page := `<a href="0101_2022e.pdf">Chapter 1</a>`
	index := buildIndex(t, "https://tariff.example.org/2022/menu-eng.html", page)

	inner := newHttpFetcher(t, &metadata.NoopSink{})
	f := fetcher.NewDomFetcher(&inner, index)

	assert.Equal(t, 1, f.Index().Len())
	_, ok := f.Index().Lookup("0101_2022e.pdf")
	assert.True(t, ok)
}
