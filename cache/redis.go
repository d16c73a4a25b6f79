package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"property-analyzer/models"
)

// RedisStore is an alternative cache backend for deployments that share
// scrape results between processes. Redis handles TTL eviction itself; any
// Redis failure degrades to a cache miss so a broken cache never fails a
// scrape.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisStore connects to Redis at addr. A zero ttl falls back to
// DefaultTTL.
func NewRedisStore(addr, password string, db int, ttl time.Duration, logger *logrus.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		rdb:    redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
		logger: logger,
	}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.NormalizedProperty, bool) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithError(err).WithField("key", key).Warn("redis get failed, treating as miss")
		}
		return nil, false
	}

	var prop models.NormalizedProperty
	if err := json.Unmarshal([]byte(raw), &prop); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("redis entry corrupt, treating as miss")
		return nil, false
	}
	return &prop, true
}

func (s *RedisStore) Set(ctx context.Context, key string, prop *models.NormalizedProperty) {
	raw, err := json.Marshal(prop)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("redis marshal failed, skipping cache write")
		return
	}
	if err := s.rdb.Set(ctx, key, string(raw), s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("redis set failed, skipping cache write")
	}
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
