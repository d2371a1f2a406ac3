// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Constructor builds the value for a key. It may be slow and is invoked
// concurrently for different keys.
type Constructor[K comparable, V any] func(key K) (V, error)

// Destructor releases a value that is being unloaded. It must not retain the
// value afterwards.
type Destructor[V any] func(value V) error

// transitions receives state changes of a Value. Every method is called with
// the value's lock held.
type transitions[K comparable, V any] interface {
	touched(key K)
	loaded(key K, value V)
	unloaded(key K, value V, reason Reason)
}

// Value is a lazily constructed cache value.
type Value[K comparable, V any] struct {
	key     K
	create  Constructor[K, V]
	destroy Destructor[V]
	events  transitions[K, V]

	mu      sync.RWMutex
	value   V
	created atomic.Bool
	retired bool
}

func newValue[K comparable, V any](
	key K,
	create Constructor[K, V],
	destroy Destructor[V],
	events transitions[K, V],
) *Value[K, V] {
	return &Value[K, V]{
		key:     key,
		create:  create,
		destroy: destroy,
		events:  events,
	}
}

// Key returns the key the value is constructed from.
func (v *Value[K, V]) Key() K {
	return v.key
}

// IsCreated reports whether the value is currently materialized.
func (v *Value[K, V]) IsCreated() bool {
	return v.created.Load()
}

// Value returns the materialized value, constructing it first if needed.
// Concurrent callers of an unmaterialized value wait for a single
// construction and share its result.
func (v *Value[K, V]) Value() (V, error) {
	v.mu.RLock()
	if v.created.Load() {
		value := v.value
		v.touch()
		v.mu.RUnlock()
		return value, nil
	}
	v.mu.RUnlock()

	return v.load()
}

func (v *Value[K, V]) load() (V, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.created.Load() {
		v.touch()
		return v.value, nil
	}

	var zero V
	if v.retired {
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, v.key)
	}

	value, err := v.create(v.key)
	if err != nil {
		return zero, fmt.Errorf("%w: key %v: %w", ErrConstructionFailed, v.key, err)
	}

	v.value = value
	v.created.Store(true)
	if v.events != nil {
		v.events.loaded(v.key, value)
	}
	return value, nil
}

func (v *Value[K, V]) touch() {
	if v.events != nil {
		v.events.touched(v.key)
	}
}

// unloadLocked releases the materialized value. The state is cleared even if
// the destructor fails.
func (v *Value[K, V]) unloadLocked(reason Reason) (bool, error) {
	if !v.created.Load() {
		return false, nil
	}

	value := v.value
	var zero V
	v.value = zero
	v.created.Store(false)

	err := v.release(value)
	if v.events != nil {
		v.events.unloaded(v.key, value, reason)
	}
	return true, err
}

// release runs the destructor, reporting a panic as an error so callers
// holding locks can finish their bookkeeping.
func (v *Value[K, V]) release(value V) (err error) {
	if v.destroy == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("destructor panicked: %v", r)
		}
	}()
	return v.destroy(value)
}

// retireLocked unloads the value and detaches the handle from the cache so it
// can never be materialized again.
func (v *Value[K, V]) retireLocked(reason Reason) (bool, error) {
	v.retired = true
	return v.unloadLocked(reason)
}

func (v *Value[K, V]) retire(reason Reason) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, err := v.retireLocked(reason)
	return err
}
