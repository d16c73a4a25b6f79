package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-analyzer/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func sampleProperty() models.NormalizedProperty {
	return models.NormalizedProperty{
		Address:              "Calle de Alcalá 100",
		Location:             "Barcelona, Eixample",
		PurchasePrice:        450000,
		EstimatedMonthlyRent: 1950,
		SquareMeters:         90,
		Bedrooms:             3,
		Bathrooms:            2,
		PropertyType:         "Apartment",
	}
}

func TestEnrichFinancials(t *testing.T) {
	svc := NewMetricsService(testLogger())

	enriched, err := svc.Enrich(sampleProperty())
	require.NoError(t, err)
	require.NotNil(t, enriched.Financials)

	fin := enriched.Financials
	assert.InDelta(t, 23400, fin.AnnualRentalIncome, 1e-9)
	assert.InDelta(t, 2250, fin.PropertyTax, 1e-9)
	assert.InDelta(t, 900, fin.Insurance, 1e-9)
	assert.InDelta(t, 4500, fin.Maintenance, 1e-9)
	assert.InDelta(t, 1872, fin.ManagementFees, 1e-9)
	assert.InDelta(t, 9522, fin.TotalExpenses, 1e-9)
	assert.InDelta(t, 13878, fin.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 3.084, fin.CapRate, 0.001)
	assert.InDelta(t, 5.2, fin.RentalYield, 1e-9)
	assert.InDelta(t, 5000, fin.PricePerSquareMeter, 1e-9)
	assert.InDelta(t, 9522.0/23400.0*100, fin.BreakEvenOccupancy, 1e-9)
}

func TestEnrichNOIIdentity(t *testing.T) {
	svc := NewMetricsService(testLogger())

	enriched, err := svc.Enrich(sampleProperty())
	require.NoError(t, err)

	fin := enriched.Financials
	assert.Equal(t, fin.AnnualRentalIncome-fin.TotalExpenses, fin.NetOperatingIncome)
}

func TestEnrichMortgage(t *testing.T) {
	svc := NewMetricsService(testLogger())

	enriched, err := svc.Enrich(sampleProperty())
	require.NoError(t, err)

	fin := enriched.Financials
	assert.InDelta(t, 135000, fin.DownPayment, 1e-9)
	assert.InDelta(t, 315000, fin.LoanAmount, 1e-9)
	assert.Greater(t, fin.MonthlyMortgage, 0.0)
	assert.InDelta(t, fin.MonthlyMortgage*12, fin.AnnualMortgagePayment, 1e-9)

	wantCoC := (fin.NetOperatingIncome - fin.AnnualMortgagePayment) / fin.DownPayment * 100
	assert.InDelta(t, wantCoC, fin.CashOnCashReturn, 1e-9)
}

func TestEnrichIsDeterministic(t *testing.T) {
	svc := NewMetricsService(testLogger())
	prop := sampleProperty()

	first, err := svc.Enrich(prop)
	require.NoError(t, err)
	second, err := svc.Enrich(prop)
	require.NoError(t, err)

	assert.Equal(t, first.Financials, second.Financials)
	assert.Equal(t, first.Risk, second.Risk)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	svc := NewMetricsService(testLogger())
	prop := sampleProperty()
	original := prop

	_, err := svc.Enrich(prop)
	require.NoError(t, err)
	assert.Equal(t, original, prop)
}

func TestEnrichInvalidInputs(t *testing.T) {
	svc := NewMetricsService(testLogger())

	tests := []struct {
		name   string
		mutate func(*models.NormalizedProperty)
		field  string
	}{
		{"zero price", func(p *models.NormalizedProperty) { p.PurchasePrice = 0 }, "purchasePrice"},
		{"negative price", func(p *models.NormalizedProperty) { p.PurchasePrice = -1 }, "purchasePrice"},
		{"zero rent", func(p *models.NormalizedProperty) { p.EstimatedMonthlyRent = 0 }, "estimatedMonthlyRent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := sampleProperty()
			tt.mutate(&prop)

			_, err := svc.Enrich(prop)
			require.Error(t, err)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestEnrichZeroAreaSkipsPricePerSquareMeter(t *testing.T) {
	svc := NewMetricsService(testLogger())
	prop := sampleProperty()
	prop.SquareMeters = 0

	enriched, err := svc.Enrich(prop)
	require.NoError(t, err)
	assert.Zero(t, enriched.Financials.PricePerSquareMeter)
}

func TestRiskAssessment(t *testing.T) {
	svc := NewMetricsService(testLogger())

	t.Run("prime market and high yield", func(t *testing.T) {
		enriched, err := svc.Enrich(sampleProperty())
		require.NoError(t, err)
		require.NotNil(t, enriched.Risk)

		// base 70 + prime location 10 + yield above 5% 10
		assert.Equal(t, 90, enriched.Risk.Score)
		assert.Equal(t, "Very Low", enriched.Risk.Category)
	})

	t.Run("unlisted market with mid yield", func(t *testing.T) {
		prop := sampleProperty()
		prop.Location = "Cuenca"
		prop.EstimatedMonthlyRent = 1500 // yield 4%

		enriched, err := svc.Enrich(prop)
		require.NoError(t, err)
		assert.Equal(t, 70, enriched.Risk.Score)
		assert.Equal(t, "Low", enriched.Risk.Category)
	})

	t.Run("low yield drops the score", func(t *testing.T) {
		prop := sampleProperty()
		prop.Location = "Cuenca"
		prop.EstimatedMonthlyRent = 900 // yield 2.4%

		enriched, err := svc.Enrich(prop)
		require.NoError(t, err)
		assert.Equal(t, 60, enriched.Risk.Score)
		assert.Equal(t, "Medium", enriched.Risk.Category)
	})

	t.Run("prime match is case-insensitive substring", func(t *testing.T) {
		prop := sampleProperty()
		prop.Location = "Centro, MADRID"

		enriched, err := svc.Enrich(prop)
		require.NoError(t, err)
		assert.Equal(t, 90, enriched.Risk.Score)
	})
}

func TestRiskCategoryBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{90, "Very Low"},
		{85, "Very Low"},
		{84, "Low"},
		{70, "Low"},
		{69, "Medium"},
		{50, "Medium"},
		{49, "High"},
		{30, "High"},
		{29, "Very High"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, riskCategory(tt.score), "score %d", tt.score)
	}
}
