package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idealistaFixture = `
<html><body>
  <div class="main-info">
    <span class="main-info__title-main">Piso en venta en Calle de Alcalá, 100</span>
    <span class="main-info__title-minor">Goya, Madrid</span>
  </div>
  <div class="info-data-price"><span class="txt-bold">339.000</span> €</div>
  <div class="info-features">
    <span>90 m²</span>
    <span>3 hab.</span>
    <span>2 baños</span>
  </div>
  <div class="details-property">
    <div class="details-property_features">
      <ul>
        <li>Aire acondicionado</li>
        <li>Terraza</li>
        <li>Ascensor</li>
      </ul>
    </div>
  </div>
</body></html>`

func TestIdealistaParse(t *testing.T) {
	p := &idealistaParser{}
	pageURL := "https://www.idealista.com/inmueble/12345678/"

	prop, err := p.Parse(docFrom(t, idealistaFixture), pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Piso en venta en Calle de Alcalá, 100", prop.Address)
	assert.Equal(t, "Goya, Madrid", prop.Location)
	assert.Equal(t, float64(339000), prop.PurchasePrice)
	assert.Equal(t, float64(90), prop.SquareMeters)
	assert.Equal(t, 3, prop.Bedrooms)
	assert.Equal(t, 2, prop.Bathrooms)
	assert.Equal(t, "Apartment", prop.PropertyType)
	assert.Equal(t, []string{"Aire acondicionado", "Terraza", "Ascensor"}, prop.Features)

	// rent fallback: price x 4.5% / 12
	assert.InDelta(t, 339000*0.045/12, prop.EstimatedMonthlyRent, 1e-9)

	assert.Equal(t, PlatformIdealista, prop.Source.Platform)
	assert.Equal(t, pageURL, prop.Source.URL)
	assert.False(t, prop.Source.ScrapedAt.IsZero())
}

func TestIdealistaParseMissingOptionalFields(t *testing.T) {
	const partial = `
<html><body>
  <span class="main-info__title-main">Piso en venta</span>
  <div class="info-data-price"><span class="txt-bold">120.000</span></div>
</body></html>`

	p := &idealistaParser{}
	prop, err := p.Parse(docFrom(t, partial), "https://www.idealista.com/inmueble/1/")
	require.NoError(t, err)

	assert.Equal(t, float64(120000), prop.PurchasePrice)
	assert.Zero(t, prop.SquareMeters)
	assert.Zero(t, prop.Bedrooms)
	assert.Zero(t, prop.Bathrooms)
	assert.Empty(t, prop.Features)
	assert.Empty(t, prop.Location)
}
