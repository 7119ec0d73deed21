// Package caching keeps hot lookups (token resolution) out of the database.
// Values live in Redis when one is configured and in a process-local LFU
// otherwise.
package caching

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

const (
	DEFAULT_LOCAL_SIZE = 10000
	DEFAULT_LOCAL_TTL  = time.Minute
)

type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Redis redis.UniversalClient
	// LocalSize > 0 puts a TinyLFU in front of Redis. Without Redis it is
	// the only tier and defaults to DEFAULT_LOCAL_SIZE.
	LocalSize int
	LocalTTL  time.Duration
}

// UseCache returns the cached value for key, or loads it and stores it.
// Load errors (including not-found) are returned as is and never cached.
func UseCache[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		return v, err
	}

	v, err = load()
	if err != nil {
		return v, err
	}

	//nolint:errcheck
	c.Set(ctx, key, v, ttl)
	return v, nil
}

// Store is the go-redis/cache implementation of Cache.
type Store struct {
	codec *cache.Cache
	tiers string
}

func New(opts Options) *Store {
	if opts.Redis == nil && opts.LocalSize <= 0 {
		opts.LocalSize = DEFAULT_LOCAL_SIZE
	}
	if opts.LocalTTL <= 0 {
		opts.LocalTTL = DEFAULT_LOCAL_TTL
	}

	cacheOpts := &cache.Options{}
	var tiers []string
	if opts.LocalSize > 0 {
		cacheOpts.LocalCache = cache.NewTinyLFU(opts.LocalSize, opts.LocalTTL)
		tiers = append(tiers, "local")
	}
	if opts.Redis != nil {
		cacheOpts.Redis = opts.Redis
		tiers = append(tiers, "redis")
	}
	return &Store{codec: cache.New(cacheOpts), tiers: strings.Join(tiers, "+")}
}

// Tiers names the backing tiers, e.g. "local+redis".
func (s *Store) Tiers() string {
	return s.tiers
}

func (s *Store) Get(ctx context.Context, key string, target any) error {
	return s.codec.Get(ctx, key, target)
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.codec.Set(&cache.Item{Ctx: ctx, Key: key, Value: value, TTL: ttl})
}

// Delete is a no-op for keys that are not cached.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.codec.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return err
	}
	return nil
}
