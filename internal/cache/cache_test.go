// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache_test

import (
	"context"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/kvcachego/internal/cache"
	"github.com/staranto/kvcachego/internal/store"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := store.NewRedis(store.WithAddr(mr.Addr()))
	t.Cleanup(func() { _ = r.Close() })

	c, err := cache.New(context.Background(), r)
	require.NoError(t, err)
	return c, mr
}

func TestNew_FlushesNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("stale", "x"))

	r := store.NewRedis(store.WithAddr(mr.Addr()))
	defer r.Close()

	_, err := cache.New(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, mr.Exists("stale"))
}

func TestNew_WithoutFlush(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("kept", "x"))

	r := store.NewRedis(store.WithAddr(mr.Addr()))
	defer r.Close()

	_, err := cache.New(context.Background(), r, cache.WithFlush(false))
	require.NoError(t, err)
	assert.True(t, mr.Exists("kept"))
}

func TestNew_StoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	r := store.NewRedis(store.WithAddr(mr.Addr()))
	defer r.Close()
	mr.Close()

	_, err := cache.New(context.Background(), r)
	assert.Error(t, err)
}

func TestStore_KeyIsUUID(t *testing.T) {
	c, mr := newTestCache(t)

	key, err := c.Store(context.Background(), "hello")
	require.NoError(t, err)

	_, err = uuid.Parse(key)
	assert.NoError(t, err)
	assert.True(t, mr.Exists(key))
}

func TestStore_KeysAreUnique(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key, err := c.Store(ctx, i)
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	t.Run("bytes", func(t *testing.T) {
		key, err := c.Store(ctx, []byte("foo"))
		require.NoError(t, err)
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("foo"), got)
	})

	t.Run("string", func(t *testing.T) {
		key, err := c.Store(ctx, "bar")
		require.NoError(t, err)
		got, ok, err := c.GetString(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "bar", got)
	})

	t.Run("int", func(t *testing.T) {
		key, err := c.Store(ctx, 123)
		require.NoError(t, err)
		got, ok, err := c.GetInt(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 123, got)
	})

	t.Run("float", func(t *testing.T) {
		key, err := c.Store(ctx, 3.14)
		require.NoError(t, err)
		got, ok, err := cache.Retrieve(ctx, c, key, cache.DecodeFloat)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3.14, got)
	})

	t.Run("non-finite float", func(t *testing.T) {
		for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
			key, err := c.Store(ctx, f)
			require.NoError(t, err)
			got, ok, err := cache.Retrieve(ctx, c, key, cache.DecodeFloat)
			require.NoError(t, err)
			assert.True(t, ok)
			if math.IsNaN(f) {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.Equal(t, f, got)
			}
		}
	})
}

func TestStore_NonFiniteFloatIsRecorded(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, err := c.Store(ctx, math.Inf(1))
	require.NoError(t, err)

	n, err := mr.Get(cache.StoreOpName)
	require.NoError(t, err)
	assert.Equal(t, "1", n)
	inputs, err := mr.List(cache.StoreOpName + ":inputs")
	require.NoError(t, err)
	assert.Equal(t, []string{`["+Inf"]`}, inputs)
}

func TestStore_UnsupportedType(t *testing.T) {
	c, mr := newTestCache(t)

	_, err := c.Store(context.Background(), map[string]int{"a": 1})
	assert.ErrorIs(t, err, cache.ErrUnsupportedType)
	assert.False(t, mr.Exists(cache.StoreOpName), "rejected data must not be counted")
}

func TestGet_Missing(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	raw, err := c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, raw)

	s, ok, err := c.GetString(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", s)

	called := false
	_, ok, err = cache.Retrieve(ctx, c, "missing", func(b []byte) (int, error) {
		called = true
		return 0, nil
	})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called, "decode must not run for a missing key")
}

func TestGetInt_DecodeError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	key, err := c.Store(ctx, "not a number")
	require.NoError(t, err)

	_, ok, err := c.GetInt(ctx, key)
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestStore_CountsCalls(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	for i := 0; i < 5; i++ {
		_, err := c.Store(ctx, "x")
		require.NoError(t, err)
	}

	n, err := mr.Get(cache.StoreOpName)
	require.NoError(t, err)
	assert.Equal(t, "5", n)
}

func TestStore_RecordsHistory(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	k1, err := c.Store(ctx, "first")
	require.NoError(t, err)
	k2, err := c.Store(ctx, 42)
	require.NoError(t, err)

	inputs, err := mr.List(cache.StoreOpName + ":inputs")
	require.NoError(t, err)
	assert.Equal(t, []string{`["first"]`, `[42]`}, inputs)

	outputs, err := mr.List(cache.StoreOpName + ":outputs")
	require.NoError(t, err)
	assert.Equal(t, []string{k1, k2}, outputs)
}

func TestStoreRef(t *testing.T) {
	c, _ := newTestCache(t)

	ref := c.StoreRef()
	assert.Equal(t, cache.StoreOpName, ref.Name)
	assert.NotNil(t, ref.Handle)
}

func TestNilHandle(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, nil)
	require.NoError(t, err)

	_, err = c.Store(ctx, "x")
	assert.Error(t, err)
	_, err = c.Get(ctx, "x")
	assert.Error(t, err)
	assert.Nil(t, c.StoreRef().Handle)
}

func TestTypedNilHandle(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, (*store.Redis)(nil))
	require.NoError(t, err)

	_, err = c.Store(ctx, "x")
	assert.Error(t, err)
	assert.Nil(t, c.StoreRef().Handle)
}
