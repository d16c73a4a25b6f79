package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)

	var done atomic.Int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() { done.Add(1) })
	}
	pool.Wait()

	assert.EqualValues(t, 20, done.Load())
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)

	var current, peak atomic.Int64
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestWorkerPoolMinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)

	var done atomic.Int64
	pool.Submit(func() { done.Add(1) })
	pool.Wait()

	assert.EqualValues(t, 1, done.Load())
}
