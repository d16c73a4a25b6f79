package utils

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Backoff retries an operation with exponential back-off. The scrape path
// never retries; this exists for infrastructure setup such as waiting out a
// database that is still starting.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *logrus.Logger
}

// Do executes fn until it succeeds or MaxAttempts is exhausted.
func (b *Backoff) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := b.BaseDelay

	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < b.MaxAttempts {
			b.Logger.WithFields(logrus.Fields{
				"operation": operationName,
				"attempt":   attempt,
				"max":       b.MaxAttempts,
				"delay":     delay.String(),
			}).WithError(lastErr).Warn("operation failed, retrying")
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, b.MaxAttempts, lastErr)
}
