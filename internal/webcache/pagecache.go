// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package webcache

import (
	"context"
	"strconv"
	"time"

	"github.com/apex/log"

	"github.com/staranto/kvcachego/internal/store"
)

// DefaultTTL is how long a fetched page is served from the store.
const DefaultTTL = 10 * time.Second

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc lets a plain function act as a Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// PageCache serves page bodies from the store for TTL after fetching them and
// keeps a per-URL access counter.
type PageCache struct {
	store   store.Store
	fetcher Fetcher
	ttl     time.Duration
}

type Option func(*PageCache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(p *PageCache) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func New(s store.Store, f Fetcher, opts ...Option) *PageCache {
	p := &PageCache{store: s, fetcher: f, ttl: DefaultTTL}
	for _, o := range opts {
		o(p)
	}
	return p
}

func CountKey(url string) string  { return "count:" + url }
func ResultKey(url string) string { return "result:" + url }

// TTL returns the expiry applied to cached bodies.
func (p *PageCache) TTL() time.Duration { return p.ttl }

// GetPage counts the access, then returns the cached body for url if there
// is one. Otherwise it fetches the page, resets the counter to 0 and caches
// the body for the TTL. Fetch errors are returned and nothing is cached.
func (p *PageCache) GetPage(ctx context.Context, url string) (string, error) {
	if _, err := p.store.Incr(ctx, CountKey(url)); err != nil {
		return "", err
	}

	cached, err := p.store.Get(ctx, ResultKey(url))
	if err != nil {
		return "", err
	}
	if len(cached) > 0 {
		log.Debugf("page cache hit: %s", url)
		return string(cached), nil
	}

	log.Debugf("page cache miss: %s", url)
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := p.store.Set(ctx, CountKey(url), 0); err != nil {
		return "", err
	}
	if err := p.store.SetWithExpiry(ctx, ResultKey(url), body, p.ttl); err != nil {
		return "", err
	}
	return body, nil
}

// AccessCount returns the counter for url, 0 if it has never been requested.
func (p *PageCache) AccessCount(ctx context.Context, url string) (int64, error) {
	raw, err := p.store.Get(ctx, CountKey(url))
	if err != nil || raw == nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}
