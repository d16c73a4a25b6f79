package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"property-analyzer/models"
)

// BatchReport summarizes a batch of scored analyses.
type BatchReport struct {
	TotalAnalyzed    int
	AverageScore     float64
	MinScore         int
	MaxScore         int
	BestYield        *models.Analysis
	TopByScore       []*models.Analysis
	CountByLocation  map[string]int
	CountByRiskBand  map[string]int
}

// ReportService aggregates analyses into a BatchReport and prints a terminal
// summary.
type ReportService struct {
	logger *logrus.Logger
}

func NewReportService(logger *logrus.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(analyses []*models.Analysis) *BatchReport {
	report := &BatchReport{
		CountByLocation: make(map[string]int),
		CountByRiskBand: make(map[string]int),
	}

	if len(analyses) == 0 {
		return report
	}

	report.TotalAnalyzed = len(analyses)
	report.MinScore = analyses[0].Result.Score
	report.MaxScore = analyses[0].Result.Score

	var scoreTotal int
	for _, a := range analyses {
		scoreTotal += a.Result.Score
		if a.Result.Score < report.MinScore {
			report.MinScore = a.Result.Score
		}
		if a.Result.Score > report.MaxScore {
			report.MaxScore = a.Result.Score
		}

		if a.Property.Location != "" {
			report.CountByLocation[a.Property.Location]++
		}
		if a.Property.Risk != nil {
			report.CountByRiskBand[a.Property.Risk.Category]++
		}
		if a.Property.Financials != nil {
			if report.BestYield == nil ||
				a.Property.Financials.RentalYield > report.BestYield.Property.Financials.RentalYield {
				report.BestYield = a
			}
		}
	}
	report.AverageScore = round2(float64(scoreTotal) / float64(len(analyses)))

	ranked := make([]*models.Analysis, len(analyses))
	copy(ranked, analyses)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopByScore = ranked

	return report
}

func (s *ReportService) Print(r *BatchReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 PROPERTY INVESTMENT REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Properties analyzed : \033[1m%d\033[0m\n", r.TotalAnalyzed)
	if r.TotalAnalyzed > 0 {
		fmt.Printf("  Average score       : \033[1;32m%.1f\033[0m\n", r.AverageScore)
		fmt.Printf("  Score range         : \033[1m%d - %d\033[0m\n", r.MinScore, r.MaxScore)
	}
	fmt.Println()

	if r.BestYield != nil && r.BestYield.Property.Financials != nil {
		fmt.Printf("\033[1;33m  Best Rental Yield\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.BestYield.Property.Address, 50))
		fmt.Printf("  Location : %s\n", r.BestYield.Property.Location)
		fmt.Printf("  Yield    : \033[1;32m%.2f%%\033[0m\n", r.BestYield.Property.Financials.RentalYield)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Top Properties by Score\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopByScore) == 0 {
		fmt.Printf("  No scored properties\n")
	} else {
		for i, a := range r.TopByScore {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%3d\033[0m (%s)\n",
				i+1, truncate(a.Property.Address, 38), a.Result.Score, a.Result.Method)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Properties by Risk Band\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.CountByRiskBand) == 0 {
		fmt.Printf("  No risk data\n")
	} else {
		type bandCount struct {
			band  string
			count int
		}
		var bands []bandCount
		for band, cnt := range r.CountByRiskBand {
			bands = append(bands, bandCount{band, cnt})
		}
		sort.Slice(bands, func(i, j int) bool {
			return bands[i].count > bands[j].count
		})
		for _, bc := range bands {
			bar := strings.Repeat("█", bc.count)
			fmt.Printf("  %-12s %s (%d)\n", bc.band, bar, bc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
