// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/lazycache/lru"
	"github.com/luxfi/lazycache/memstats"
)

var _ LazyCacher[struct{}, struct{}] = (*Cache[struct{}, struct{}])(nil)

// Cache is a memory-aware lazy cache.
//
// Entries are registered with a constructor and materialized on first read.
// Every AddOrUpdate runs the eviction loop, which unloads the least recently
// used values while the eviction policy reports the cache is over capacity.
// Eviction releases values but keeps their keys; a later read reconstructs
// them.
//
// Lock order is mu, then an entry's lock, then the recency tracker's lock.
// Reads never take mu.
type Cache[K comparable, V any] struct {
	// mu serializes structural changes and the eviction loop.
	mu      sync.Mutex
	entries *shardedMap[K, *Value[K, V]]
	order   *lru.Tracker[K]

	policy       EvictionPolicy
	maxOccupancy atomic.Uint32 // float32 bits
	forceReclaim bool
	reclaim      func()

	observers []Observer[K, V]
	log       *slog.Logger

	hardFaults atomic.Uint64
	evictions  atomic.Uint64
}

// New creates a cache. Unless WithPolicy is given, eviction is driven by host
// memory occupancy compared against cfg.MaxOccupancy.
func New[K comparable, V any](cfg Config, opts ...Option[K, V]) (*Cache[K, V], error) {
	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[K, V]{
		entries:      newShardedMap[K, *Value[K, V]](cfg.Shards, o.hasher),
		order:        lru.NewTracker[K](),
		forceReclaim: cfg.ForceReclaimOnEviction,
		reclaim:      o.reclaim,
		observers:    o.observers,
		log:          o.logger,
	}
	c.SetMaxOccupancy(cfg.MaxOccupancy)

	c.policy = o.policy
	if c.policy == nil {
		reader := o.memory
		if reader == nil {
			procReader, err := memstats.NewProcReader()
			if err != nil {
				return nil, fmt.Errorf("creating default memory policy: %w", err)
			}
			reader = procReader
		}
		c.policy = MemoryPressure(reader, c.MaxOccupancy, c.log)
	}
	return c, nil
}

// MaxOccupancy returns the memory occupancy threshold of the default policy.
func (c *Cache[K, V]) MaxOccupancy() float32 {
	return math.Float32frombits(c.maxOccupancy.Load())
}

// SetMaxOccupancy sets the memory occupancy threshold, clamped to [0, 1].
func (c *Cache[K, V]) SetMaxOccupancy(fraction float32) {
	c.maxOccupancy.Store(math.Float32bits(clampFraction(fraction)))
}

// AddOrUpdate registers key with its constructor and optional destructor. An
// existing entry under key is unloaded and replaced. The new value is not
// constructed until it is read.
func (c *Cache[K, V]) AddOrUpdate(key K, create Constructor[K, V], destroy Destructor[V]) {
	if create == nil {
		panic("lazycache: nil constructor")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := newValue(key, create, destroy, c)
	if old, ok := c.entries.swap(key, v); ok {
		if err := old.retire(Replaced); err != nil {
			c.log.Warn("failed to destroy replaced value",
				slog.Any("key", key),
				slog.String("error", err.Error()))
		}
	}
	c.order.Touch(key)

	c.evictLocked()
}

// Add registers key like AddOrUpdate but fails with ErrDuplicateKey if key is
// already present.
func (c *Cache[K, V]) Add(key K, create Constructor[K, V], destroy Destructor[V]) error {
	if create == nil {
		panic("lazycache: nil constructor")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.entries.insert(key, newValue(key, create, destroy, c)) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}
	c.order.Touch(key)

	c.evictLocked()
	return nil
}

// Get returns the handle for key. Reading the handle materializes the value.
func (c *Cache[K, V]) Get(key K) (*Value[K, V], error) {
	v, ok := c.entries.get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, nil
}

// TryGet returns the handle for key, if it exists.
func (c *Cache[K, V]) TryGet(key K) (*Value[K, V], bool) {
	return c.entries.get(key)
}

// TryRemove unloads the value of key, invoking its destructor if it was
// materialized, and removes the entry. It reports whether key was present.
func (c *Cache[K, V]) TryRemove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.delete(key)
	if !ok {
		return false
	}
	c.retire(v, Removed)
	return true
}

// Flush removes every entry.
func (c *Cache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range c.entries.drain() {
		c.retire(v, Removed)
	}
	c.order.Flush()
}

func (c *Cache[K, V]) retire(v *Value[K, V], reason Reason) {
	if err := c.untrack(v, reason); err != nil {
		c.log.Warn("failed to destroy removed value",
			slog.Any("key", v.key),
			slog.String("error", err.Error()))
	}
}

// untrack retires v and drops its key from the recency order under the
// entry's lock.
func (c *Cache[K, V]) untrack(v *Value[K, V], reason Reason) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer c.order.Remove(v.key)

	_, err := v.retireLocked(reason)
	return err
}

// Len returns the number of entries, materialized or not.
func (c *Cache[K, V]) Len() int {
	return c.entries.len()
}

// Resident returns the number of keys in the recency order: entries that were
// added or read since they were last evicted.
func (c *Cache[K, V]) Resident() int {
	return c.order.Len()
}

// All returns an iterator over the entries in no particular order. Iterating
// does not materialize values.
func (c *Cache[K, V]) All() iter.Seq2[K, *Value[K, V]] {
	return func(yield func(K, *Value[K, V]) bool) {
		c.entries.each(yield)
	}
}

// HardFaults returns the number of times a value was constructed.
func (c *Cache[K, V]) HardFaults() uint64 {
	return c.hardFaults.Load()
}

// IsResident reports whether key is in the recency order, i.e. it was added
// or read since it was last evicted.
func (c *Cache[K, V]) IsResident(key K) bool {
	return c.order.Contains(key)
}

// Evictions returns the number of values released by the eviction loop.
func (c *Cache[K, V]) Evictions() uint64 {
	return c.evictions.Load()
}

// Warm materializes keys using at most parallelism concurrent constructions
// (unbounded if parallelism <= 0). It stops scheduling work once ctx is done
// or a read fails and returns the first error. Warming does not run eviction.
func (c *Cache[K, V]) Warm(ctx context.Context, keys []K, parallelism int) error {
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	stopped := false
	for _, key := range keys {
		if gctx.Err() != nil {
			stopped = true
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := c.Get(key)
			if err != nil {
				return err
			}
			_, err = v.Value()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if stopped {
		return ctx.Err()
	}
	return nil
}

// evictLocked unloads the oldest values while the policy reports the cache is
// over capacity. Must be called with mu held.
func (c *Cache[K, V]) evictLocked() {
	for c.policy() {
		key, ok := c.order.Oldest()
		if !ok {
			return
		}
		c.evict(key)
	}
}

func (c *Cache[K, V]) evict(key K) {
	v, ok := c.entries.get(key)
	if !ok {
		c.order.Remove(key)
		return
	}

	released, err := c.unloadOldest(v)
	if err != nil {
		c.log.Warn("failed to destroy evicted value",
			slog.Any("key", key),
			slog.String("error", err.Error()))
	}
	if !released {
		return
	}

	c.evictions.Add(1)
	c.log.Debug("evicted value", slog.Any("key", key))
	if c.forceReclaim {
		c.reclaim()
	}
}

// unloadOldest unloads v and drops its key from the recency order, provided
// the key is still the oldest one. It reports whether a value was released.
func (c *Cache[K, V]) unloadOldest(v *Value[K, V]) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// A concurrent read may have touched the key since it was picked.
	if oldest, ok := c.order.Oldest(); !ok || oldest != v.key {
		return false, nil
	}
	defer c.order.Remove(v.key)

	return v.unloadLocked(Evicted)
}

func (c *Cache[K, V]) touched(key K) {
	c.order.Touch(key)
}

func (c *Cache[K, V]) loaded(key K, value V) {
	c.hardFaults.Add(1)
	c.order.Touch(key)
	for _, o := range c.observers {
		o.OnLoaded(key, value)
	}
}

func (c *Cache[K, V]) unloaded(key K, value V, reason Reason) {
	for _, o := range c.observers {
		o.OnUnloaded(key, value, reason)
	}
}
