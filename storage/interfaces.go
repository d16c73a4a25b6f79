package storage

import "property-analyzer/models"

// AnalysisWriter is the interface any analysis sink must satisfy.
type AnalysisWriter interface {
	Write(analyses []*models.Analysis) error
	Close() error
}
