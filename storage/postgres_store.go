package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"property-analyzer/models"
	"property-analyzer/utils"
)

// PostgresStore persists scored analyses to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits out a database that is still
// starting, runs schema migration and returns a ready store.
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	backoff := &utils.Backoff{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := backoff.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id             UUID PRIMARY KEY,
			platform       VARCHAR(50)   NOT NULL,
			url            TEXT          NOT NULL,
			address        TEXT          NOT NULL DEFAULT '',
			location       TEXT          NOT NULL DEFAULT '',
			purchase_price NUMERIC(14,2) NOT NULL DEFAULT 0,
			monthly_rent   NUMERIC(12,2) NOT NULL DEFAULT 0,
			square_meters  NUMERIC(10,2) NOT NULL DEFAULT 0,
			cap_rate       NUMERIC(8,4)  NOT NULL DEFAULT 0,
			rental_yield   NUMERIC(8,4)  NOT NULL DEFAULT 0,
			risk_score     INTEGER       NOT NULL DEFAULT 0,
			risk_category  VARCHAR(20)   NOT NULL DEFAULT '',
			score          INTEGER       NOT NULL DEFAULT 0,
			narrative      TEXT          NOT NULL DEFAULT '',
			method         VARCHAR(20)   NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_analyses_platform ON analyses(platform);
		CREATE INDEX IF NOT EXISTS idx_analyses_location ON analyses(location);
		CREATE INDEX IF NOT EXISTS idx_analyses_score    ON analyses(score);
	`)
	return err
}

// Write batch-inserts analyses.
func (ps *PostgresStore) Write(analyses []*models.Analysis) error {
	if len(analyses) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(analyses); i += batchSize {
		end := i + batchSize
		if end > len(analyses) {
			end = len(analyses)
		}
		if err := ps.insertBatch(analyses[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const analysisColumns = 15

func (ps *PostgresStore) insertBatch(batch []*models.Analysis) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*analysisColumns)

	for idx, a := range batch {
		base := idx * analysisColumns
		placeholders := make([]string, analysisColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var capRate, rentalYield float64
		if a.Property.Financials != nil {
			capRate = a.Property.Financials.CapRate
			rentalYield = a.Property.Financials.RentalYield
		}
		var riskScore int
		var riskCategory string
		if a.Property.Risk != nil {
			riskScore = a.Property.Risk.Score
			riskCategory = a.Property.Risk.Category
		}

		valueArgs = append(valueArgs,
			a.ID,
			a.Property.Source.Platform,
			a.Property.Source.URL,
			a.Property.Address,
			a.Property.Location,
			a.Property.PurchasePrice,
			a.Property.EstimatedMonthlyRent,
			a.Property.SquareMeters,
			capRate,
			rentalYield,
			riskScore,
			riskCategory,
			a.Result.Score,
			a.Result.Narrative,
			a.Result.Method,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO analyses (
			id, platform, url, address, location, purchase_price, monthly_rent,
			square_meters, cap_rate, rental_yield, risk_score, risk_category,
			score, narrative, method
		)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := ps.db.Exec(query, valueArgs...)
	return err
}

// FetchRecent returns the most recent analyses, newest first, with the
// columns a report needs populated.
func (ps *PostgresStore) FetchRecent(limit int) ([]*models.Analysis, error) {
	rows, err := ps.db.Query(`
		SELECT id, platform, url, address, location, purchase_price, monthly_rent,
		       square_meters, cap_rate, rental_yield, risk_score, risk_category,
		       score, narrative, method, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch recent: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		a := &models.Analysis{
			Property: models.EnrichedProperty{
				Financials: &models.FinancialMetrics{},
				Risk:       &models.RiskAssessment{},
			},
		}
		if err := rows.Scan(
			&a.ID,
			&a.Property.Source.Platform,
			&a.Property.Source.URL,
			&a.Property.Address,
			&a.Property.Location,
			&a.Property.PurchasePrice,
			&a.Property.EstimatedMonthlyRent,
			&a.Property.SquareMeters,
			&a.Property.Financials.CapRate,
			&a.Property.Financials.RentalYield,
			&a.Property.Risk.Score,
			&a.Property.Risk.Category,
			&a.Result.Score,
			&a.Result.Narrative,
			&a.Result.Method,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
