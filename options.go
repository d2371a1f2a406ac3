// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"log/slog"
	"runtime/debug"

	"github.com/luxfi/lazycache/memstats"
)

// Option configures a Cache.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	policy    EvictionPolicy
	memory    memstats.Reader
	observers []Observer[K, V]
	logger    *slog.Logger
	reclaim   func()
	hasher    Hasher[K]
}

func defaultOptions[K comparable, V any]() options[K, V] {
	return options[K, V]{
		logger:  slog.Default(),
		reclaim: debug.FreeOSMemory,
	}
}

// WithPolicy replaces the default memory occupancy policy.
func WithPolicy[K comparable, V any](policy EvictionPolicy) Option[K, V] {
	return func(o *options[K, V]) {
		if policy != nil {
			o.policy = policy
		}
	}
}

// WithMemoryReader sets the memory source of the default policy. Without it
// the cache reads /proc/meminfo.
func WithMemoryReader[K comparable, V any](reader memstats.Reader) Option[K, V] {
	return func(o *options[K, V]) {
		if reader != nil {
			o.memory = reader
		}
	}
}

// WithObserver registers an observer of load and unload transitions. The
// observer runs while the entry is locked: reading the same key from inside a
// callback deadlocks.
func WithObserver[K comparable, V any](observer Observer[K, V]) Option[K, V] {
	return func(o *options[K, V]) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger[K comparable, V any](logger *slog.Logger) Option[K, V] {
	return func(o *options[K, V]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReclaimer replaces the reclaim hint run after evictions when
// Config.ForceReclaimOnEviction is set.
func WithReclaimer[K comparable, V any](reclaim func()) Option[K, V] {
	return func(o *options[K, V]) {
		if reclaim != nil {
			o.reclaim = reclaim
		}
	}
}

// WithHasher sets the function used to pick an entry shard for a key.
func WithHasher[K comparable, V any](hasher Hasher[K]) Option[K, V] {
	return func(o *options[K, V]) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}
