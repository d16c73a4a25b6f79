package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"property-analyzer/models"
)

// Expense model: flat percentages of purchase price, management as a share
// of rental income.
const (
	propertyTaxRate   = 0.005
	insuranceRate     = 0.002
	maintenanceRate   = 0.01
	managementFeeRate = 0.08
)

// Mortgage assumptions: 30% down, 3.5% annual interest, 30-year loan.
const (
	downPaymentRate    = 0.30
	annualInterestRate = 0.035
	loanTermYears      = 30
)

const baseRiskScore = 70

// primeMarkets gets a flat +10 on the risk score. Matching is a
// case-insensitive substring check against the listing location.
var primeMarkets = []string{"madrid", "barcelona", "valencia", "malaga", "sevilla", "bilbao"}

// InvalidInputError reports a NormalizedProperty that violates the metrics
// input contract, which signals an upstream extraction failure.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid metrics input: %s = %v (must be positive)", e.Field, e.Value)
}

// MetricsService derives financial metrics and a risk assessment from a
// normalized property. Enrich is pure: identical input always yields
// identical output.
type MetricsService struct {
	logger *logrus.Logger
}

func NewMetricsService(logger *logrus.Logger) *MetricsService {
	return &MetricsService{logger: logger}
}

// Enrich computes FinancialMetrics and RiskAssessment for p and returns a
// copy with both attached. The input is never mutated.
func (s *MetricsService) Enrich(p models.NormalizedProperty) (*models.EnrichedProperty, error) {
	if p.PurchasePrice <= 0 {
		return nil, &InvalidInputError{Field: "purchasePrice", Value: p.PurchasePrice}
	}
	if p.EstimatedMonthlyRent <= 0 {
		return nil, &InvalidInputError{Field: "estimatedMonthlyRent", Value: p.EstimatedMonthlyRent}
	}

	fin := computeFinancials(p.PurchasePrice, p.EstimatedMonthlyRent, p.SquareMeters)
	risk := assessRisk(p.Location, fin.RentalYield)

	s.logger.WithFields(logrus.Fields{
		"price":     p.PurchasePrice,
		"cap_rate":  fin.CapRate,
		"yield":     fin.RentalYield,
		"risk":      risk.Score,
		"risk_band": risk.Category,
	}).Debug("property enriched")

	return &models.EnrichedProperty{
		NormalizedProperty: p,
		Financials:         fin,
		Risk:               risk,
	}, nil
}

func computeFinancials(price, monthlyRent, squareMeters float64) *models.FinancialMetrics {
	annualRent := monthlyRent * 12

	tax := price * propertyTaxRate
	insurance := price * insuranceRate
	maintenance := price * maintenanceRate
	management := annualRent * managementFeeRate
	totalExpenses := tax + insurance + maintenance + management

	noi := annualRent - totalExpenses

	downPayment := price * downPaymentRate
	loan := price - downPayment
	monthlyMortgage := amortizedMonthlyPayment(loan, annualInterestRate, loanTermYears)
	annualMortgage := monthlyMortgage * 12

	fin := &models.FinancialMetrics{
		AnnualRentalIncome:    annualRent,
		PropertyTax:           tax,
		Insurance:             insurance,
		Maintenance:           maintenance,
		ManagementFees:        management,
		TotalExpenses:         totalExpenses,
		NetOperatingIncome:    noi,
		CapRate:               noi / price * 100,
		DownPayment:           downPayment,
		LoanAmount:            loan,
		MonthlyMortgage:       monthlyMortgage,
		AnnualMortgagePayment: annualMortgage,
		CashOnCashReturn:      (noi - annualMortgage) / downPayment * 100,
		RentalYield:           annualRent / price * 100,
		BreakEvenOccupancy:    totalExpenses / annualRent * 100,
	}

	// Price per area is only meaningful when the surface is known; listings
	// missing it keep the zero value instead of failing enrichment.
	if squareMeters > 0 {
		fin.PricePerSquareMeter = price / squareMeters
	}

	return fin
}

// amortizedMonthlyPayment applies the standard amortization formula:
// M = P * r(1+r)^n / ((1+r)^n - 1), with r the monthly rate.
func amortizedMonthlyPayment(principal, annualRate float64, years int) float64 {
	if principal <= 0 {
		return 0
	}
	monthlyRate := annualRate / 12
	n := float64(years * 12)
	if monthlyRate == 0 {
		return principal / n
	}
	factor := math.Pow(1+monthlyRate, n)
	return principal * monthlyRate * factor / (factor - 1)
}

func assessRisk(location string, rentalYield float64) *models.RiskAssessment {
	score := baseRiskScore

	loc := strings.ToLower(location)
	for _, market := range primeMarkets {
		if strings.Contains(loc, market) {
			score += 10
			break
		}
	}

	switch {
	case rentalYield > 5:
		score += 10
	case rentalYield < 3:
		score -= 10
	}

	return &models.RiskAssessment{Score: score, Category: riskCategory(score)}
}

func riskCategory(score int) string {
	switch {
	case score >= 85:
		return "Very Low"
	case score >= 70:
		return "Low"
	case score >= 50:
		return "Medium"
	case score >= 30:
		return "High"
	default:
		return "Very High"
	}
}
