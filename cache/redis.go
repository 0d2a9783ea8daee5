package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis-backed store.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	// Default: "localhost:6379"
	Addr string

	// Password authenticates against the server. Empty means no auth.
	Password string

	// DB selects the logical database.
	DB int

	// TTL, when positive, expires entries after the given duration.
	// Zero keeps entries indefinitely, matching the disk store.
	TTL time.Duration
}

// RedisStore persists entries in Redis. Useful when the cache is shared
// across processes or hosts.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis store from config.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{rdb: rdb, ttl: cfg.TTL}
}

// NewRedisStoreFromClient wraps an existing go-redis client. The caller
// retains ownership of the client's lifecycle.
func NewRedisStoreFromClient(rdb *goredis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get retrieves a stored value. found is false when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	value, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	return value, true, nil
}

// Set persists a value under key, replacing any existing entry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity to the Redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)
