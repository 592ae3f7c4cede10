package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vlaanderen-mow/amsync/common"
)

// SharedTier is an optional Redis-backed cache shared across pipeline
// processes (SPEC_FULL.md §11: "optional Redis-backed shared tier"). A
// Lookup's loader copies each table it loads from CouchDB into it; Lookup
// never reads from it, so every process still loads its own tables.
type SharedTier struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSharedTier connects to a Redis (or Redis-protocol-compatible) instance
// at addr. prefix namespaces keys per lookup table, e.g. "amsync:assettype".
func NewSharedTier(addr, password string, prefix string, ttl time.Duration) *SharedTier {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &SharedTier{client: client, prefix: prefix, ttl: ttl}
}

func (s *SharedTier) key(k string) string {
	return s.prefix + ":" + k
}

// Get returns the cached value for key, or (false) if it is absent.
func (s *SharedTier) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.Wrap(common.ClassConnectivity, "read shared cache", err)
	}
	return v, true, nil
}

// SetAll populates the shared tier from a freshly loaded lookup table,
// called once by whichever process first loads a Lookup.
func (s *SharedTier) SetAll(ctx context.Context, values map[string]string) error {
	pipe := s.client.Pipeline()
	for k, v := range values {
		pipe.Set(ctx, s.key(k), v, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return common.Wrap(common.ClassConnectivity, "populate shared cache", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *SharedTier) Close() error {
	return s.client.Close()
}
