package naming_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFilename_Coordinate(t *testing.T) {
	doc := naming.NewCoordinateDocument(1, "01")
	assert.Equal(t, "0101_2022e.pdf", naming.ResolveFilename(2022, doc))

	doc = naming.NewCoordinateDocument(97, "99")
	assert.Equal(t, "9799_2022e.pdf", naming.ResolveFilename(2022, doc))
}

func TestResolveFilename_Named(t *testing.T) {
	doc := naming.NewNamedDocument("introduction_{EDITION}e.pdf")
	assert.Equal(t, "introduction_2022e.pdf", naming.ResolveFilename(2022, doc))
	assert.Equal(t, "introduction_2019e.pdf", naming.ResolveFilename(2019, doc))
}

func TestResolveFilename_InjectiveOverFullGrid(t *testing.T) {
	seen := make(map[string]struct{})
	for chapter := naming.ChapterMin; chapter <= naming.ChapterMax; chapter++ {
		for heading := naming.HeadingMin; heading <= naming.HeadingMax; heading++ {
			doc := naming.NewCoordinateDocument(chapter, naming.HeadingLabel(heading))
			filename := naming.ResolveFilename(2022, doc)
			_, duplicate := seen[filename]
			require.False(t, duplicate, "duplicate filename %s", filename)
			seen[filename] = struct{}{}
		}
	}
	assert.Len(t, seen, (naming.ChapterMax-naming.ChapterMin+1)*(naming.HeadingMax-naming.HeadingMin+1))
}

func TestResolveFilename_Deterministic(t *testing.T) {
	doc := naming.NewCoordinateDocument(42, "07")
	first := naming.ResolveFilename(2023, doc)
	second := naming.ResolveFilename(2023, doc)
	assert.Equal(t, first, second)
}

func TestParseCoordinateFilename_InverseOfResolve(t *testing.T) {
	for chapter := naming.ChapterMin; chapter <= naming.ChapterMax; chapter++ {
		for heading := naming.HeadingMin; heading <= naming.HeadingMax; heading++ {
			label := naming.HeadingLabel(heading)
			doc := naming.NewCoordinateDocument(chapter, label)
			filename := naming.ResolveFilename(2022, doc)

			parsedChapter, parsedHeading, ok := naming.ParseCoordinateFilename(2022, filename)
			require.True(t, ok, "filename %s did not parse", filename)
			require.Equal(t, chapter, parsedChapter)
			require.Equal(t, label, parsedHeading)
		}
	}
}

func TestParseCoordinateFilename_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		filename string
	}{
		{"named document", "introduction_2022e.pdf"},
		{"wrong edition", "0101_2021e.pdf"},
		{"chapter zero", "0001_2022e.pdf"},
		{"chapter out of range", "9801_2022e.pdf"},
		{"heading zero", "0100_2022e.pdf"},
		{"not digits", "01ab_2022e.pdf"},
		{"too short", "011_2022e.pdf"},
		{"not a pdf", "0101_2022e.txt"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := naming.ParseCoordinateFilename(2022, tc.filename)
			assert.False(t, ok)
		})
	}
}

func TestResolveURL(t *testing.T) {
	base, err := url.Parse("https://tariff.example.org/trade/tariff")
	require.NoError(t, err)

	doc := naming.NewCoordinateDocument(1, "01")
	resolved := naming.ResolveURL(*base, 2022, doc)
	assert.Equal(t, "https://tariff.example.org/trade/tariff/2022/0101_2022e.pdf", resolved.String())
}

func TestLandingURL(t *testing.T) {
	base, err := url.Parse("https://tariff.example.org/trade/tariff")
	require.NoError(t, err)

	landing := naming.LandingURL(*base, 2022)
	assert.Equal(t, "https://tariff.example.org/trade/tariff/2022/menu-eng.html", landing.String())
}

func TestHeadingLabel(t *testing.T) {
	assert.Equal(t, "01", naming.HeadingLabel(1))
	assert.Equal(t, "99", naming.HeadingLabel(99))
}

func TestResolve_CarriesMandatoryClassification(t *testing.T) {
	base, _ := url.Parse("https://tariff.example.org/t")

	named := naming.NewNamedDocument("gir_{EDITION}e.pdf")
	remote := naming.Resolve(*base, 2022, named)
	assert.True(t, remote.IsMandatory())
	assert.Equal(t, "gir_2022e.pdf", remote.Filename())

	coordinate := naming.NewCoordinateDocument(5, "12")
	remote = naming.Resolve(*base, 2022, coordinate)
	assert.False(t, remote.IsMandatory())
}
