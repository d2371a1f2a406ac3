// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lru provides the recency order used to pick eviction victims.
package lru

import (
	"container/list"
	"sync"
)

// Tracker is a thread-safe least-recently-used ordering of keys.
//
// The front of the list is the most recently touched key and the back is the
// oldest. Touch, Oldest and Remove are O(1).
type Tracker[K comparable] struct {
	lock     sync.Mutex
	elements map[K]*list.Element
	order    *list.List
}

// NewTracker creates an empty tracker.
func NewTracker[K comparable]() *Tracker[K] {
	return &Tracker[K]{
		elements: make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Touch marks key as the most recently used, inserting it if absent.
func (t *Tracker[K]) Touch(key K) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if elem, ok := t.elements[key]; ok {
		t.order.MoveToFront(elem)
		return
	}
	t.elements[key] = t.order.PushFront(key)
}

// Oldest returns the least recently touched key without removing it.
func (t *Tracker[K]) Oldest() (K, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if back := t.order.Back(); back != nil {
		return back.Value.(K), true
	}
	var zero K
	return zero, false
}

// Remove drops key from the order and reports whether it was present.
func (t *Tracker[K]) Remove(key K) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	elem, ok := t.elements[key]
	if !ok {
		return false
	}
	delete(t.elements, key)
	t.order.Remove(elem)
	return true
}

// Contains reports whether key is tracked.
func (t *Tracker[K]) Contains(key K) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, ok := t.elements[key]
	return ok
}

// Len returns the number of tracked keys.
func (t *Tracker[K]) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.order.Len()
}

// Flush removes every key.
func (t *Tracker[K]) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.elements = make(map[K]*list.Element)
	t.order.Init()
}

// Keys returns the tracked keys ordered from oldest to newest.
func (t *Tracker[K]) Keys() []K {
	t.lock.Lock()
	defer t.lock.Unlock()

	keys := make([]K, 0, t.order.Len())
	for elem := t.order.Back(); elem != nil; elem = elem.Prev() {
		keys = append(keys, elem.Value.(K))
	}
	return keys
}
