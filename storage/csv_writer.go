package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"property-analyzer/models"
)

// CSVWriter exports scored analyses to a CSV file for offline inspection.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "platform", "url", "address", "location", "purchase_price",
		"monthly_rent", "square_meters", "cap_rate", "rental_yield",
		"risk_score", "risk_category", "score", "narrative", "method", "created_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per analysis.
func (c *CSVWriter) Write(analyses []*models.Analysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range analyses {
		var capRate, rentalYield string
		if a.Property.Financials != nil {
			capRate = strconv.FormatFloat(a.Property.Financials.CapRate, 'f', 2, 64)
			rentalYield = strconv.FormatFloat(a.Property.Financials.RentalYield, 'f', 2, 64)
		}
		var riskScore, riskCategory string
		if a.Property.Risk != nil {
			riskScore = strconv.Itoa(a.Property.Risk.Score)
			riskCategory = a.Property.Risk.Category
		}

		row := []string{
			a.ID,
			a.Property.Source.Platform,
			a.Property.Source.URL,
			a.Property.Address,
			a.Property.Location,
			strconv.FormatFloat(a.Property.PurchasePrice, 'f', 2, 64),
			strconv.FormatFloat(a.Property.EstimatedMonthlyRent, 'f', 2, 64),
			strconv.FormatFloat(a.Property.SquareMeters, 'f', 2, 64),
			capRate,
			rentalYield,
			riskScore,
			riskCategory,
			strconv.Itoa(a.Result.Score),
			a.Result.Narrative,
			a.Result.Method,
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
