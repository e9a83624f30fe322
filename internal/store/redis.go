// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// DefaultAddr is the address used when no override is supplied.
const DefaultAddr = "localhost:6379"

// Redis implements Store on top of a go-redis client. Errors from the client
// are returned as-is so callers can test them with errors.Is.
type Redis struct {
	client redis.UniversalClient
}

var _ Store = (*Redis)(nil)

// options holds optional overrides for the Redis connection.
type options struct {
	addr     string
	password string
	db       int
}

// Option customizes how the Redis client is constructed.
type Option func(*options)

// WithAddr sets host:port. Defaults to DefaultAddr.
func WithAddr(addr string) Option {
	return func(o *options) { o.addr = addr }
}

func WithPassword(password string) Option {
	return func(o *options) { o.password = password }
}

// WithDB selects the logical database, which is the namespace that
// FlushNamespace clears.
func WithDB(db int) Option {
	return func(o *options) { o.db = db }
}

// NewRedis constructs a client. No connection is made until the first
// command; use Ping to fail fast.
func NewRedis(opts ...Option) *Redis {
	o := options{addr: DefaultAddr}
	for _, opt := range opts {
		opt(&o)
	}
	log.Debugf("redis: addr=%s db=%d", o.addr, o.db)

	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     o.addr,
			Password: o.password,
			DB:       o.db,
		}),
	}
}

// FromClient wraps an existing client, e.g. a cluster or sentinel client.
func FromClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Set(ctx context.Context, key string, value any) error {
	return r.client.Set(ctx, key, wireValue(value), 0).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (r *Redis) FlushNamespace(ctx context.Context) error {
	return r.client.FlushDB(ctx).Err()
}

func (r *Redis) RPush(ctx context.Context, key string, values ...any) error {
	return r.client.RPush(ctx, key, values...).Err()
}

func (r *Redis) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	vals, err := r.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

func (r *Redis) SetWithExpiry(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.client.SetEx(ctx, key, wireValue(value), ttl).Err()
}

// wireValue formats float32 at its own precision. go-redis widens it to
// float64 first, so 3.14 would be written as 3.140000104904175.
func wireValue(value any) any {
	if f, ok := value.(float32); ok {
		return strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return value
}
