package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-analyzer/models"
)

// fotocasaParser extracts listing data from fotocasa.es detail pages.
type fotocasaParser struct{}

func (p *fotocasaParser) Platform() string { return PlatformFotocasa }

func (p *fotocasaParser) Parse(doc *goquery.Document, pageURL string) (*models.NormalizedProperty, error) {
	if err := checkDocument(p.Platform(), doc); err != nil {
		return nil, err
	}

	prop := &models.NormalizedProperty{
		Address:      cleanText(doc.Find("h1.re-DetailHeader-propertyTitle").First().Text()),
		Location:     cleanText(doc.Find(".re-DetailHeader-municipalityTitle").First().Text()),
		PropertyType: defaultPropertyType,
		Source:       newSource(p.Platform(), pageURL),
	}

	prop.PurchasePrice = parsePrice(doc.Find(".re-DetailHeader-price").First().Text())

	// Header feature items pair an icon label with a value ("3 habs.",
	// "2 baños", "90 m²").
	doc.Find(".re-DetailHeader-features .re-DetailHeader-featuresItem").Each(func(_ int, s *goquery.Selection) {
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

	doc.Find(".re-DetailFeaturesList-featureLabel").Each(func(_ int, s *goquery.Selection) {
		if f := cleanText(s.Text()); f != "" {
			prop.Features = append(prop.Features, f)
		}
	})

	if t := cleanText(doc.Find(".re-DetailFeaturesList-featureValue--propertyType").First().Text()); t != "" {
		prop.PropertyType = t
	}

	prop.EstimatedMonthlyRent = estimateMonthlyRent(prop.PurchasePrice)

	return prop, nil
}
