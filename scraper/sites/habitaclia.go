package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-analyzer/models"
)

// habitacliaParser extracts listing data from habitaclia.com detail pages.
type habitacliaParser struct{}

func (p *habitacliaParser) Platform() string { return PlatformHabitaclia }

func (p *habitacliaParser) Parse(doc *goquery.Document, pageURL string) (*models.NormalizedProperty, error) {
	if err := checkDocument(p.Platform(), doc); err != nil {
		return nil, err
	}

	prop := &models.NormalizedProperty{
		Address:      cleanText(doc.Find("h1.property-title").First().Text()),
		Location:     cleanText(doc.Find(".address-zone a").First().Text()),
		PropertyType: defaultPropertyType,
		Source:       newSource(p.Platform(), pageURL),
	}

	if prop.Location == "" {
		prop.Location = cleanText(doc.Find("h3.address").First().Text())
	}

	prop.PurchasePrice = parsePrice(doc.Find(".price span.font-2").First().Text())

	// General features list mixes surface, rooms and bathrooms
	// ("Superficie 90m²", "3 habitaciones", "2 baños").
	doc.Find("ul.feature-container li.feature").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(cleanText(s.Text()))
		switch {
		case strings.Contains(text, "m²") || strings.Contains(text, "superficie"):
			prop.SquareMeters = firstNumber(text)
		case strings.Contains(text, "habitacion"):
			prop.Bedrooms = firstInt(text)
		case strings.Contains(text, "baño"):
			prop.Bathrooms = firstInt(text)
		}
	})

	doc.Find("#js-detail-equipment li").Each(func(_ int, s *goquery.Selection) {
		if f := cleanText(s.Text()); f != "" {
			prop.Features = append(prop.Features, f)
		}
	})

	if t := cleanText(doc.Find(".detail-type").First().Text()); t != "" {
		prop.PropertyType = t
	}

	prop.EstimatedMonthlyRent = estimateMonthlyRent(prop.PurchasePrice)

	return prop, nil
}
