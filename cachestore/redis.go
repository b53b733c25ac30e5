// Package cachestore keeps cached collections as Redis lists.
package cachestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxRead is how many values ReadAll returns at most.
const MaxRead = 50

// Redis implements refresh.Cache on top of Redis lists.
type Redis struct {
	client redis.UniversalClient
}

// Options are the connection settings for Open.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, opts Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis at '%s': %w", opts.Addr, err)
	}
	return &Redis{client: client}, nil
}

// New wraps an existing client.
func New(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) ReadAll(ctx context.Context, key string) ([]string, error) {
	values, err := r.client.LRange(ctx, key, 0, MaxRead-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading list '%s': %w", key, err)
	}
	return values, nil
}

func (r *Redis) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("error setting expiry on '%s': %w", key, err)
	}
	return nil
}

// WriteAll replaces the list at key in a single MULTI/EXEC. Writing no
// values leaves the key deleted.
func (r *Redis) WriteAll(ctx context.Context, key string, values []string, ttl time.Duration) error {
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) == 0 {
			return nil
		}
		args := make([]interface{}, len(values))
		for i, v := range values {
			args[i] = v
		}
		pipe.RPush(ctx, key, args...)
		pipe.Expire(ctx, key, ttl)
		return nil
	}); err != nil {
		return fmt.Errorf("error writing %d values to '%s': %w", len(values), key, err)
	}
	return nil
}
