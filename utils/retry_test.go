package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestBackoffEventualSuccess(t *testing.T) {
	b := &Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: quietLogger()}

	attempts := 0
	err := b.Do("flaky-op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestBackoffExhaustsAttempts(t *testing.T) {
	b := &Backoff{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: quietLogger()}

	cause := errors.New("still down")
	err := b.Do("dead-op", func() error { return cause })

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
