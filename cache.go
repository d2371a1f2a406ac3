// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lazycache provides a lazily materializing cache whose values are
// unloaded in least-recently-used order while an eviction policy reports
// that the cache is over capacity.
package lazycache

import (
	"context"
	"iter"
)

// LazyCacher registers keys with constructors and hands out lazy handles.
type LazyCacher[K comparable, V any] interface {
	// AddOrUpdate registers key, replacing any existing entry, and then runs
	// eviction.
	AddOrUpdate(key K, create Constructor[K, V], destroy Destructor[V])

	// Add registers key and fails if it is already present.
	Add(key K, create Constructor[K, V], destroy Destructor[V]) error

	// Get returns the handle for key or ErrKeyNotFound.
	Get(key K) (*Value[K, V], error)

	// TryGet returns the handle for key, if it exists.
	TryGet(key K) (*Value[K, V], bool)

	// TryRemove unloads and removes key.
	TryRemove(key K) bool

	// Flush removes all entries from the cache.
	Flush()

	// Len returns the number of entries, materialized or not.
	Len() int

	// All iterates over the entries without materializing them.
	All() iter.Seq2[K, *Value[K, V]]

	// Warm materializes keys concurrently.
	Warm(ctx context.Context, keys []K, parallelism int) error

	// HardFaults returns the number of cold constructions.
	HardFaults() uint64
}

// Reason describes why a value was unloaded.
type Reason uint8

const (
	// Evicted values were unloaded by the eviction loop. The key is kept.
	Evicted Reason = iota + 1
	// Removed values belong to entries removed by the caller.
	Removed
	// Replaced values belong to entries overwritten by AddOrUpdate.
	Replaced
)

func (r Reason) String() string {
	switch r {
	case Evicted:
		return "evicted"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Observer is notified when values are materialized or unloaded.
//
// Callbacks run synchronously while the entry is locked and must not call
// back into the cache for the same key.
type Observer[K comparable, V any] interface {
	OnLoaded(key K, value V)
	OnUnloaded(key K, value V, reason Reason)
}
