package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"property-analyzer/models"
)

// DefaultTTL is how long a scraped property stays valid, measured from
// capture time. There is no sliding expiration.
const DefaultTTL = time.Hour

// Key builds the composite cache key for a scrape target.
func Key(platform, url string) string {
	return fmt.Sprintf("%s:%s", platform, url)
}

// Store is the scrape-result cache contract. Implementations must be safe
// for concurrent use; last writer wins on the same key.
type Store interface {
	Get(ctx context.Context, key string) (*models.NormalizedProperty, bool)
	Set(ctx context.Context, key string, prop *models.NormalizedProperty)
}

type entry struct {
	capturedAt time.Time
	prop       *models.NormalizedProperty
}

// MemoryStore is the default in-process TTL cache. Expired entries are
// dropped lazily on read.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore creates a MemoryStore with the given TTL. A zero ttl falls
// back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.NormalizedProperty, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.now().Sub(e.capturedAt) >= s.ttl {
		s.mu.Lock()
		// Re-check under the write lock: a fresher entry may have landed.
		if cur, ok := s.entries[key]; ok && s.now().Sub(cur.capturedAt) >= s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.prop, true
}

func (s *MemoryStore) Set(_ context.Context, key string, prop *models.NormalizedProperty) {
	s.mu.Lock()
	s.entries[key] = entry{capturedAt: s.now(), prop: prop}
	s.mu.Unlock()
}

// Len reports the number of entries currently held, including any that have
// expired but not yet been evicted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
