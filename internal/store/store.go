// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"
)

// Store is the key-value store collaborator. Implementations must serialize
// concurrent callers themselves; nothing above this layer locks.
type Store interface {
	// Set writes value under key with no expiry.
	Set(ctx context.Context, key string, value any) error
	// Get returns the raw value of key, or nil without error when the key
	// does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Incr increments the integer at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	// FlushNamespace removes every key in the active namespace.
	FlushNamespace(ctx context.Context) error
	// RPush appends values to the list at key.
	RPush(ctx context.Context, key string, values ...any) error
	// LRange returns list elements start..stop inclusive; negative indexes
	// count from the end.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	SetWithExpiry(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Valid reports whether s can serve requests. A nil interface and a nil
// *Redis, typed or not, are both invalid.
func Valid(s Store) bool {
	switch h := s.(type) {
	case nil:
		return false
	case *Redis:
		return h != nil && h.client != nil
	}
	return true
}
