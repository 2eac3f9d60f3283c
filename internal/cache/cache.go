// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend"
)

const (
	DefaultCapacity     = 256
	DefaultFetchTimeout = 30 * time.Second
)

// Config controls capacity and fetch behavior.
//
//   - Capacity <= 0 uses DefaultCapacity. The least recently used entry is
//     evicted, and its handle released, once the cache is full.
//   - FetchTimeout <= 0 uses DefaultFetchTimeout. It bounds every backend
//     fetch independently of the callers waiting on it.
//   - DenialTTL > 0 remembers denials for that long and answers them without
//     a fetch. Zero disables it.
//   - PreloadConcurrency > 0 bounds how many Preload requests run at once.
type Config struct {
	Capacity           int
	FetchTimeout       time.Duration
	DenialTTL          time.Duration
	PreloadConcurrency int
}

// Stats is a point-in-time view for diagnostics.
type Stats struct {
	Entries     int   `json:"entries" yaml:"entries"`
	Capacity    int   `json:"capacity" yaml:"capacity"`
	InFlight    int   `json:"inFlight" yaml:"inFlight"`
	Bytes       int64 `json:"bytes" yaml:"bytes"`
	Hits        int64 `json:"hits" yaml:"hits"`
	Joins       int64 `json:"joins" yaml:"joins"`
	Fetches     int64 `json:"fetches" yaml:"fetches"`
	Ready       int64 `json:"ready" yaml:"ready"`
	Denied      int64 `json:"denied" yaml:"denied"`
	Unavailable int64 `json:"unavailable" yaml:"unavailable"`
	Evictions   int64 `json:"evictions" yaml:"evictions"`
}

// Cache is the secure asset cache. It is safe for concurrent use. Build one
// with New and pass it by reference to its consumers.
type Cache struct {
	be  backend.Backend
	cfg Config

	mu       sync.Mutex
	entries  *simplelru.LRU[string, *Handle]
	pending  map[string]struct{}
	bytes    int64
	clearing bool

	flight  singleflight.Group
	denials *gocache.Cache

	hits      atomic.Int64
	joins     atomic.Int64
	fetches   atomic.Int64
	ready     atomic.Int64
	denied    atomic.Int64
	unavail   atomic.Int64
	evictions atomic.Int64
}

// New builds a cache that resolves misses through be.
func New(be backend.Backend, cfg Config) (*Cache, error) {
	if be == nil {
		return nil, errors.New("cache: backend is required")
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	c := &Cache{
		be:      be,
		cfg:     cfg,
		pending: make(map[string]struct{}),
	}

	entries, err := simplelru.NewLRU[string, *Handle](cfg.Capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.entries = entries

	if cfg.DenialTTL > 0 {
		c.denials = gocache.New(cfg.DenialTTL, 2*cfg.DenialTTL)
	}

	return c, nil
}

// Request resolves key to a handle. A cached key returns immediately; a key
// already being fetched joins that fetch; otherwise one fetch is issued and,
// on success, its handle is cached.
//
// The only error is asset.ErrInvalidKey for a malformed key. Denial and
// backend failures are reported through Result.Status. If ctx ends first
// the caller gets StatusUnavailable while the shared fetch carries on.
func (c *Cache) Request(ctx context.Context, key asset.Key) (Result, error) {
	key = key.Normalize()
	if err := key.Validate(); err != nil {
		return Result{Key: key, Status: StatusUnavailable, Err: err}, err
	}
	id := key.String()

	if h, ok := c.lookup(id); ok {
		c.hits.Add(1)
		log.Debugf("cache hit: %s", id)
		return Result{Key: key, Status: StatusReady, Handle: h}, nil
	}

	if r, ok := c.recentlyDenied(key, id); ok {
		return r, nil
	}

	// leader is only written by the flight this caller started, and only read
	// after that flight has delivered its result.
	leader := false
	ch := c.flight.DoChan(id, func() (interface{}, error) {
		leader = true
		return c.resolve(ctx, key, id), nil
	})

	select {
	case res := <-ch:
		if !leader {
			c.joins.Add(1)
			log.Debugf("joined in-flight fetch: %s", id)
		}
		return res.Val.(Result), nil //nolint:forcetypeassert
	case <-ctx.Done():
		log.WithField("key", id).Debug("caller gave up waiting")
		return Result{Key: key, Status: StatusUnavailable, Err: ctx.Err()}, nil
	}
}

// Preload requests every key concurrently and returns once all have settled.
// Results are index-aligned with keys. One key's failure never affects
// another's.
func (c *Cache) Preload(ctx context.Context, keys []asset.Key) []Result {
	results := make([]Result, len(keys))

	var g errgroup.Group
	if c.cfg.PreloadConcurrency > 0 {
		g.SetLimit(c.cfg.PreloadConcurrency)
	}
	for i, k := range keys {
		g.Go(func() error {
			results[i], _ = c.Request(ctx, k)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Clear releases every cached handle and empties the cache. Fetches already
// in flight are not affected and may populate the cache afterwards.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := c.entries.Len()
	c.clearing = true
	c.entries.Purge()
	c.clearing = false
	c.bytes = 0
	c.mu.Unlock()

	if c.denials != nil {
		c.denials.Flush()
	}

	if n > 0 {
		log.Debugf("cache cleared, released %d handle(s)", n)
	}
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Keys returns the cached keys, least recently used first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries, inflight, size := c.entries.Len(), len(c.pending), c.bytes
	c.mu.Unlock()

	return Stats{
		Entries:     entries,
		Capacity:    c.cfg.Capacity,
		InFlight:    inflight,
		Bytes:       size,
		Hits:        c.hits.Load(),
		Joins:       c.joins.Load(),
		Fetches:     c.fetches.Load(),
		Ready:       c.ready.Load(),
		Denied:      c.denied.Load(),
		Unavailable: c.unavail.Load(),
		Evictions:   c.evictions.Load(),
	}
}

func (c *Cache) lookup(id string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(id)
}

func (c *Cache) recentlyDenied(key asset.Key, id string) (Result, bool) {
	if c.denials == nil {
		return Result{}, false
	}
	v, ok := c.denials.Get(id)
	if !ok {
		return Result{}, false
	}
	log.Debugf("denial memo hit: %s", id)
	err, _ := v.(error)
	return Result{Key: key, Status: StatusDenied, Err: err}, true
}

// resolve runs once per in-flight key. The entry is stored, and the key
// leaves the in-flight set, before singleflight releases the waiters.
func (c *Cache) resolve(ctx context.Context, key asset.Key, id string) Result {
	c.mu.Lock()
	// A fetch for this key may have completed between the caller's miss and
	// this call starting.
	if h, ok := c.entries.Get(id); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return Result{Key: key, Status: StatusReady, Handle: h}
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	res := c.fetch(ctx, key)

	c.mu.Lock()
	delete(c.pending, id)
	if res.Status == StatusReady {
		c.entries.Add(id, res.Handle)
		c.bytes += int64(res.Handle.Size())
	}
	c.mu.Unlock()

	return res
}

func (c *Cache) fetch(ctx context.Context, key asset.Key) Result {
	id := key.String()
	logger := log.WithField("key", id)

	// Detach from the first caller so joined callers are not cut off when it
	// goes away; the deadline still bounds the fetch.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
	defer cancel()

	c.fetches.Add(1)
	start := time.Now()
	payload, err := c.be.Fetch(fctx, key)

	switch {
	case err == nil:
	case backend.IsDenied(err):
		c.denied.Add(1)
		logger.WithError(err).Warnf("access denied: wallet %s does not own token %s", key.Wallet, key.TokenID)
		if c.denials != nil {
			c.denials.SetDefault(id, err)
		}
		return Result{Key: key, Status: StatusDenied, Err: err}
	default:
		c.unavail.Add(1)
		logger.WithError(err).WithField("reason", failureKind(fctx, err)).Warnf("failed to load asset %s/%s", key.Variant, key.TokenID)
		return Result{Key: key, Status: StatusUnavailable, Err: err}
	}

	h, err := newHandle(key, payload)
	if err != nil {
		c.unavail.Add(1)
		logger.WithError(err).Warn("failed to create handle")
		return Result{Key: key, Status: StatusUnavailable, Err: err}
	}

	c.ready.Add(1)
	logger.Debugf("resolved %s in %s", humanize.IBytes(uint64(h.Size())), time.Since(start).Round(time.Millisecond))
	return Result{Key: key, Status: StatusReady, Handle: h}
}

// onEvict runs under c.mu from Add and Purge.
func (c *Cache) onEvict(id string, h *Handle) {
	c.bytes -= int64(h.Size())
	h.release()
	if !c.clearing {
		c.evictions.Add(1)
		log.Debugf("evicted %s", id)
	}
}

func failureKind(ctx context.Context, err error) string {
	var se *backend.StatusError
	switch {
	case backend.IsNotFound(err):
		return "not-found"
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se):
		return fmt.Sprintf("status-%d", se.StatusCode)
	default:
		return "network"
	}
}
