package sites

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"property-analyzer/models"
)

// Supported platform tags. Dispatch is a closed set: adding a portal means
// adding one Parser implementation and one entry in the dispatch table.
const (
	PlatformIdealista  = "idealista"
	PlatformFotocasa   = "fotocasa"
	PlatformHabitaclia = "habitaclia"
)

// assumedGrossYield backs the monthly rent estimation used when a listing
// carries no rental figure. It is a placeholder assumption, not market data.
const assumedGrossYield = 0.045

const defaultPropertyType = "Apartment"

// Parser extracts a NormalizedProperty from a rendered listing page.
type Parser interface {
	Platform() string
	Parse(doc *goquery.Document, pageURL string) (*models.NormalizedProperty, error)
}

// UnsupportedPlatformError is returned when the platform tag matches no
// known portal.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q", e.Platform)
}

// ParseError reports an extraction failure inside a parser. It carries the
// platform name and the underlying cause.
type ParseError struct {
	Platform string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse failed: %v", e.Platform, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var parsers = map[string]Parser{
	PlatformIdealista:  &idealistaParser{},
	PlatformFotocasa:   &fotocasaParser{},
	PlatformHabitaclia: &habitacliaParser{},
}

// ForPlatform resolves the parser for a platform tag, case-insensitively.
func ForPlatform(tag string) (Parser, error) {
	p, ok := parsers[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: tag}
	}
	return p, nil
}

var digitsRe = regexp.MustCompile(`\d`)

// parsePrice strips every non-digit character and parses the remainder.
// "339.000 €" and "1,250,000" both come out as integers; anything without
// digits yields 0.
func parsePrice(raw string) float64 {
	digits := strings.Join(digitsRe.FindAllString(raw, -1), "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return float64(n)
}

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// firstNumber extracts the first numeric token from a text fragment,
// accepting either comma or dot decimal separators.
func firstNumber(raw string) float64 {
	m := numberRe.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func firstInt(raw string) int {
	return int(firstNumber(raw))
}

// estimateMonthlyRent derives a monthly rent from the purchase price using
// the assumed gross yield. Sale listings carry no observed rent, so this is
// always an estimation.
func estimateMonthlyRent(price float64) float64 {
	return price * assumedGrossYield / 12
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkDocument guards against pages that never rendered a DOM at all.
// Missing individual selectors are fine; a page without a body is not.
func checkDocument(platform string, doc *goquery.Document) error {
	if doc == nil {
		return &ParseError{Platform: platform, Err: fmt.Errorf("nil document")}
	}
	if doc.Find("body").Length() == 0 {
		return &ParseError{Platform: platform, Err: fmt.Errorf("document has no body")}
	}
	return nil
}

func newSource(platform, pageURL string) models.Source {
	return models.Source{
		Platform:  platform,
		URL:       pageURL,
		ScrapedAt: time.Now(),
	}
}
