package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the cache document as a single Redis string.
// Expiration is handled by the PersistentCache, so the key has no TTL.
type RedisStore struct {
	client    *redis.Client
	key       string
	timeout   time.Duration
	ownClient bool
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string        // Prefix for the document key (default: "bingo:cache:")
	Timeout   time.Duration // Per-operation timeout (default: 5s)
}

// NewRedisStore creates a store for the cache name using a new client.
func NewRedisStore(cfg RedisConfig, name string) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	s := NewRedisStoreFromClient(redis.NewClient(opts), cfg.KeyPrefix, name)
	s.ownClient = true
	if cfg.Timeout > 0 {
		s.timeout = cfg.Timeout
	}
	return s, nil
}

// NewRedisStoreFromClient creates a store sharing an existing client.
// Close leaves a shared client open.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix, name string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "bingo:cache:"
	}

	return &RedisStore{
		client:  client,
		key:     keyPrefix + name,
		timeout: 5 * time.Second,
	}
}

// Open tests the connection.
func (s *RedisStore) Open() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Load fetches the document. A missing key yields nil.
func (s *RedisStore) Load() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write replaces the document.
func (s *RedisStore) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Close closes the Redis connection if the store created it.
func (s *RedisStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

// Location returns the Redis key.
func (s *RedisStore) Location() string {
	return "redis:" + s.key
}

var _ Store = (*RedisStore)(nil)
