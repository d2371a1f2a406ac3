// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import "sync/atomic"

// SizeBudget bounds the total size of materialized values. Register it as an
// Observer and use Exceeded as the eviction policy.
type SizeBudget[K comparable, V any] struct {
	maxSize     int64
	currentSize atomic.Int64
	sizeFn      func(K, V) int64
}

// NewSizeBudget creates a budget of maxSize units as measured by sizeFn. A nil
// sizeFn counts every value as one unit.
func NewSizeBudget[K comparable, V any](maxSize int64, sizeFn func(K, V) int64) *SizeBudget[K, V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	if sizeFn == nil {
		sizeFn = func(K, V) int64 { return 1 }
	}
	return &SizeBudget[K, V]{
		maxSize: maxSize,
		sizeFn:  sizeFn,
	}
}

func (b *SizeBudget[K, V]) OnLoaded(key K, value V) {
	b.currentSize.Add(b.sizeFn(key, value))
}

func (b *SizeBudget[K, V]) OnUnloaded(key K, value V, _ Reason) {
	b.currentSize.Add(-b.sizeFn(key, value))
}

// Exceeded reports whether materialized values use more than the budget.
func (b *SizeBudget[K, V]) Exceeded() bool {
	return b.currentSize.Load() > b.maxSize
}

// Size returns the size of all materialized values.
func (b *SizeBudget[K, V]) Size() int64 {
	return b.currentSize.Load()
}

// PortionFilled returns the ratio of size used to max size.
func (b *SizeBudget[K, V]) PortionFilled() float64 {
	return float64(b.currentSize.Load()) / float64(b.maxSize)
}

var _ Observer[struct{}, struct{}] = (*SizeBudget[struct{}, struct{}])(nil)
