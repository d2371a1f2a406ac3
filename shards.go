// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"hash/maphash"
	"math/bits"
	"sync"

	"github.com/spaolacci/murmur3"
)

const defaultShards = 64

// Hasher maps a key to a shard selector.
type Hasher[K comparable] func(key K) uint64

// shardedMap spreads entries over independently locked shards so lookups of
// one key never wait on inserts of another shard's keys.
type shardedMap[K comparable, V any] struct {
	shards []*shard[K, V]
	mask   uint64
	hash   Hasher[K]
}

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func newShardedMap[K comparable, V any](numShards int, hash Hasher[K]) *shardedMap[K, V] {
	if numShards <= 0 {
		numShards = defaultShards
	}
	// round up to a power of two
	numShards = 1 << bits.Len(uint(numShards-1))
	if hash == nil {
		hash = defaultHasher[K]()
	}

	m := &shardedMap[K, V]{
		shards: make([]*shard[K, V], numShards),
		mask:   uint64(numShards - 1),
		hash:   hash,
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

// defaultHasher uses murmur3 for string keys and maphash for everything else.
func defaultHasher[K comparable]() Hasher[K] {
	var zero K
	if _, ok := any(zero).(string); ok {
		return func(key K) uint64 {
			return StringHasher(any(key).(string))
		}
	}
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// StringHasher hashes a string key with murmur3.
func StringHasher(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

func (m *shardedMap[K, V]) shard(key K) *shard[K, V] {
	return m.shards[m.hash(key)&m.mask]
}

func (m *shardedMap[K, V]) get(key K) (V, bool) {
	s := m.shard(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// swap stores v under key and returns the previous value, if any.
func (m *shardedMap[K, V]) swap(key K, v V) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	old, ok := s.items[key]
	s.items[key] = v
	s.mu.Unlock()
	return old, ok
}

// insert stores v only if key is absent.
func (m *shardedMap[K, V]) insert(key K, v V) bool {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

func (m *shardedMap[K, V]) delete(key K) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	v, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	s.mu.Unlock()
	return v, ok
}

func (m *shardedMap[K, V]) len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// each calls yield for every entry until it returns false. Each shard is
// copied before yielding so callbacks run without shard locks held.
func (m *shardedMap[K, V]) each(yield func(K, V) bool) {
	type pair struct {
		key   K
		value V
	}
	var batch []pair
	for _, s := range m.shards {
		s.mu.RLock()
		batch = batch[:0]
		for k, v := range s.items {
			batch = append(batch, pair{k, v})
		}
		s.mu.RUnlock()

		for _, p := range batch {
			if !yield(p.key, p.value) {
				return
			}
		}
	}
}

// drain removes and returns every entry.
func (m *shardedMap[K, V]) drain() map[K]V {
	out := make(map[K]V)
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			out[k] = v
		}
		s.items = make(map[K]V)
		s.mu.Unlock()
	}
	return out
}
