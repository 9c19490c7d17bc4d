package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written to Redis
const KeyPrefix = "blackjack:"

// Redis stores values as strings with a native expiry
type Redis struct {
	client *redis.Client
	opts   Options
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client, opts Options) *Redis {
	return &Redis{client: client, opts: opts.withDefaults()}
}

// ttl maps a negative window to Redis' "no expiry"
func (r *Redis) ttl() time.Duration {
	if r.opts.TTL < 0 {
		return 0
	}
	return r.opts.TTL
}

func (r *Redis) Put(ctx context.Context, key string, data []byte) error {
	raw, err := seal(r.opts, data)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, KeyPrefix+key, raw, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.raw(ctx, key)
	if err != nil {
		return nil, err
	}
	return open(r.opts, key, raw)
}

func (r *Redis) raw(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, KeyPrefix+key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
