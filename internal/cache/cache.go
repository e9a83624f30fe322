// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/kvcachego/internal/history"
	"github.com/staranto/kvcachego/internal/store"
)

// StoreOpName is the history name of Cache.Store.
const StoreOpName = "Cache.store"

// ErrUnsupportedType is returned by Store for data that is not a string,
// byte slice, integer or float.
var ErrUnsupportedType = errors.New("unsupported data type")

// Cache stores values under random keys and records every Store call.
type Cache struct {
	handle store.Store
	flush  bool
	store  Operation
}

// Option configures the Cache
type Option func(*Cache)

// WithFlush controls whether New clears the namespace. It defaults to true;
// pass false to attach to a namespace that already holds data.
func WithFlush(flush bool) Option {
	return func(c *Cache) { c.flush = flush }
}

// New builds a Cache on handle and, unless disabled with WithFlush, flushes
// the namespace. handle may be nil or a nil *store.Redis, in which case every operation fails with
// an error and nothing is instrumented.
func New(ctx context.Context, handle store.Store, opts ...Option) (*Cache, error) {
	if !store.Valid(handle) {
		handle = nil
	}
	c := &Cache{handle: handle, flush: true}
	for _, o := range opts {
		o(c)
	}

	if c.flush && handle != nil {
		if err := handle.FlushNamespace(ctx); err != nil {
			return nil, err
		}
		log.Debug("cache: namespace flushed")
	}

	c.store = CallHistory(StoreOpName, handle, CountCalls(StoreOpName, handle, c.set))
	return c, nil
}

// Store writes data under a fresh UUID and returns the key.
func (c *Cache) Store(ctx context.Context, data any) (string, error) {
	if !supported(data) {
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, data)
	}
	return c.store(ctx, data)
}

func (c *Cache) set(ctx context.Context, args ...any) (string, error) {
	if c.handle == nil {
		return "", errors.New("cache has no store")
	}
	key := uuid.NewString()
	if err := c.handle.Set(ctx, key, args[0]); err != nil {
		return "", err
	}
	log.Debugf("cache: stored %s", key)
	return key, nil
}

// Get returns the raw value for key, or nil without error when it does not
// exist.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.handle == nil {
		return nil, errors.New("cache has no store")
	}
	return c.handle.Get(ctx, key)
}

// GetString retrieves key as UTF-8 text.
func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	return Retrieve(ctx, c, key, DecodeString)
}

// GetInt retrieves key as a base-10 integer.
func (c *Cache) GetInt(ctx context.Context, key string) (int, bool, error) {
	return Retrieve(ctx, c, key, DecodeInt)
}

// StoreRef returns the history reference for Store.
func (c *Cache) StoreRef() history.Ref {
	return history.Ref{Name: StoreOpName, Handle: c.handle}
}

// Retrieve reads key and converts it with decode. The bool reports whether
// the key exists; a missing key is not an error and decode is not called.
func Retrieve[T any](ctx context.Context, c *Cache, key string, decode func([]byte) (T, error)) (T, bool, error) {
	var zero T

	raw, err := c.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		return zero, false, nil
	}

	v, err := decode(raw)
	if err != nil {
		return zero, true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return v, true, nil
}

func DecodeString(b []byte) (string, error) { return string(b), nil }

func DecodeInt(b []byte) (int, error) { return strconv.Atoi(string(b)) }

func DecodeFloat(b []byte) (float64, error) { return strconv.ParseFloat(string(b), 64) }

func supported(data any) bool {
	switch data.(type) {
	case string, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
