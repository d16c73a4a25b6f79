package models

import (
	"time"

	"github.com/google/uuid"
)

// Source records where and when a property was captured. It is stamped by
// the parser and never modified afterwards.
type Source struct {
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// NormalizedProperty is the canonical extraction output shared by all site
// parsers. Missing optional fields are zero values; PurchasePrice and
// EstimatedMonthlyRent must be positive before metrics can be computed.
type NormalizedProperty struct {
	Address              string   `json:"address"`
	Location             string   `json:"location"`
	PurchasePrice        float64  `json:"purchase_price"`
	EstimatedMonthlyRent float64  `json:"estimated_monthly_rent"`
	SquareMeters         float64  `json:"square_meters"`
	Bedrooms             int      `json:"bedrooms"`
	Bathrooms            int      `json:"bathrooms"`
	PropertyType         string   `json:"property_type"`
	Features             []string `json:"features"`
	Source               Source   `json:"source"`
}

// FinancialMetrics holds the derived investment figures. Values are computed
// once per enrichment and never mutated.
type FinancialMetrics struct {
	AnnualRentalIncome    float64 `json:"annual_rental_income"`
	PropertyTax           float64 `json:"property_tax"`
	Insurance             float64 `json:"insurance"`
	Maintenance           float64 `json:"maintenance"`
	ManagementFees        float64 `json:"management_fees"`
	TotalExpenses         float64 `json:"total_expenses"`
	NetOperatingIncome    float64 `json:"net_operating_income"`
	CapRate               float64 `json:"cap_rate"`
	DownPayment           float64 `json:"down_payment"`
	LoanAmount            float64 `json:"loan_amount"`
	MonthlyMortgage       float64 `json:"monthly_mortgage"`
	AnnualMortgagePayment float64 `json:"annual_mortgage_payment"`
	CashOnCashReturn      float64 `json:"cash_on_cash_return"`
	RentalYield           float64 `json:"rental_yield"`
	PricePerSquareMeter   float64 `json:"price_per_square_meter"`
	BreakEvenOccupancy    float64 `json:"break_even_occupancy"`
}

// RiskAssessment is a rule-based risk estimate derived from location and
// rental yield.
type RiskAssessment struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// EnrichedProperty is a NormalizedProperty with derived metrics attached.
// The pointers stay nil when enrichment has not run (or failed), which the
// scoring layer handles explicitly.
type EnrichedProperty struct {
	NormalizedProperty
	Financials *FinancialMetrics `json:"financial_metrics,omitempty"`
	Risk       *RiskAssessment   `json:"risk_assessment,omitempty"`
}

// ScoreResult is the final investment verdict. Method records which strategy
// produced it: "ai", "heuristic" or "fallback".
type ScoreResult struct {
	Score     int    `json:"score"`
	Narrative string `json:"narrative"`
	Method    string `json:"method"`
}

// Analysis ties a scored property to a stable identifier for persistence
// and reporting.
type Analysis struct {
	ID        string           `json:"id"`
	Property  EnrichedProperty `json:"property"`
	Result    ScoreResult      `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewAnalysis stamps an Analysis with a fresh ID and timestamp.
func NewAnalysis(p EnrichedProperty, r ScoreResult) *Analysis {
	return &Analysis{
		ID:        uuid.NewString(),
		Property:  p,
		Result:    r,
		CreatedAt: time.Now(),
	}
}
