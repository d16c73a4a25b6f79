package sites

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestForPlatform(t *testing.T) {
	for _, tag := range []string{PlatformIdealista, PlatformFotocasa, PlatformHabitaclia} {
		p, err := ForPlatform(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, p.Platform())
	}
}

func TestForPlatformCaseInsensitive(t *testing.T) {
	p, err := ForPlatform("  Idealista ")
	require.NoError(t, err)
	assert.Equal(t, PlatformIdealista, p.Platform())
}

func TestForPlatformUnsupported(t *testing.T) {
	_, err := ForPlatform("zoopla")
	require.Error(t, err)

	var unsupported *UnsupportedPlatformError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "zoopla", unsupported.Platform)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"339.000 €", 339000},
		{"1,250,000", 1250000},
		{"€ 95.500", 95500},
		{"Consultar precio", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrice(tt.raw), "raw %q", tt.raw)
	}
}

func TestFirstNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"90 m²", 90},
		{"Superficie 75m²", 75},
		{"87,5 m²", 87.5},
		{"3 hab.", 3},
		{"sin datos", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, firstNumber(tt.raw), "raw %q", tt.raw)
	}
}

func TestEstimateMonthlyRent(t *testing.T) {
	// 4.5% assumed gross yield, split across 12 months
	assert.InDelta(t, 1687.5, estimateMonthlyRent(450000), 1e-9)
	assert.Zero(t, estimateMonthlyRent(0))
}

func TestParsersRejectNilDocument(t *testing.T) {
	for tag, p := range parsers {
		_, err := p.Parse(nil, "https://example.com/listing/1")
		require.Error(t, err, tag)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, tag)
		assert.Equal(t, tag, parseErr.Platform)
	}
}

func TestParsersHandleEmptyPage(t *testing.T) {
	doc := docFrom(t, "<html><body><h1>Página no encontrada</h1></body></html>")

	for tag, p := range parsers {
		prop, err := p.Parse(doc, "https://example.com/listing/1")
		require.NoError(t, err, tag)

		assert.Empty(t, prop.Address, tag)
		assert.Zero(t, prop.PurchasePrice, tag)
		assert.Zero(t, prop.EstimatedMonthlyRent, tag)
		assert.Zero(t, prop.SquareMeters, tag)
		assert.Equal(t, "Apartment", prop.PropertyType, tag)
		assert.Equal(t, tag, prop.Source.Platform, tag)
		assert.False(t, prop.Source.ScrapedAt.IsZero(), tag)
	}
}
