// Package cache holds short-lived JSON snapshots of expensive reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	// Get decodes the value at key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Nop is a Cache that never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error               { return nil }

// Redis is a Cache backed by a Redis server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Redis{rdb: rdb, prefix: "opsledger:"}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing %s to cache: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("deleting from cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
