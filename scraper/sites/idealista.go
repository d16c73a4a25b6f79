package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-analyzer/models"
)

// idealistaParser extracts listing data from idealista.com detail pages.
type idealistaParser struct{}

func (p *idealistaParser) Platform() string { return PlatformIdealista }

func (p *idealistaParser) Parse(doc *goquery.Document, pageURL string) (*models.NormalizedProperty, error) {
	if err := checkDocument(p.Platform(), doc); err != nil {
		return nil, err
	}

	prop := &models.NormalizedProperty{
		Address:      cleanText(doc.Find(".main-info__title-main").First().Text()),
		Location:     cleanText(doc.Find(".main-info__title-minor").First().Text()),
		PropertyType: defaultPropertyType,
		Source:       newSource(p.Platform(), pageURL),
	}

	prop.PurchasePrice = parsePrice(doc.Find(".info-data-price span.txt-bold").First().Text())

	// The basic features strip lists area and room counts as plain text
	// items ("90 m²", "3 hab.", "2 baños").
	doc.Find(".info-features span").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(cleanText(s.Text()))
		switch {
		case strings.Contains(text, "m²"):
			prop.SquareMeters = firstNumber(text)
		case strings.Contains(text, "hab"):
			prop.Bedrooms = firstInt(text)
		case strings.Contains(text, "baño"):
			prop.Bathrooms = firstInt(text)
		}
	})

	doc.Find(".details-property_features li").Each(func(_ int, s *goquery.Selection) {
		if f := cleanText(s.Text()); f != "" {
			prop.Features = append(prop.Features, f)
		}
	})

	if t := cleanText(doc.Find(".details-property h2.details-property-h2").First().Text()); t != "" {
		prop.PropertyType = t
	}

	prop.EstimatedMonthlyRent = estimateMonthlyRent(prop.PurchasePrice)

	return prop, nil
}
