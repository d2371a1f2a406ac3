// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metercacher provides metered cache implementations.
package metercacher

import (
	"time"

	"github.com/luxfi/lazycache"
)

var _ lazycache.LazyCacher[struct{}, struct{}] = (*Cache[struct{}, struct{}])(nil)

// Cache wraps a LazyCacher with metrics.
type Cache[K comparable, V any] struct {
	lazycache.LazyCacher[K, V]
	metrics *Metrics[K, V]
}

// New wraps c. The same metrics should be registered as an observer of c for
// load and unload counts.
func New[K comparable, V any](c lazycache.LazyCacher[K, V], metrics *Metrics[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		LazyCacher: c,
		metrics:    metrics,
	}
}

func (c *Cache[K, V]) AddOrUpdate(key K, create lazycache.Constructor[K, V], destroy lazycache.Destructor[V]) {
	start := time.Now()
	c.LazyCacher.AddOrUpdate(key, create, destroy)
	putDuration := time.Since(start)

	c.metrics.putCount.Inc()
	c.metrics.putTime.Add(float64(putDuration))
	c.metrics.len.Set(float64(c.LazyCacher.Len()))
}

func (c *Cache[K, V]) Add(key K, create lazycache.Constructor[K, V], destroy lazycache.Destructor[V]) error {
	start := time.Now()
	err := c.LazyCacher.Add(key, create, destroy)
	putDuration := time.Since(start)

	c.metrics.putCount.Inc()
	c.metrics.putTime.Add(float64(putDuration))
	c.metrics.len.Set(float64(c.LazyCacher.Len()))
	return err
}

func (c *Cache[K, V]) Get(key K) (*lazycache.Value[K, V], error) {
	start := time.Now()
	value, err := c.LazyCacher.Get(key)
	c.observeGet(err == nil, time.Since(start))
	return value, err
}

func (c *Cache[K, V]) TryGet(key K) (*lazycache.Value[K, V], bool) {
	start := time.Now()
	value, has := c.LazyCacher.TryGet(key)
	c.observeGet(has, time.Since(start))
	return value, has
}

func (c *Cache[K, V]) observeGet(hit bool, getDuration time.Duration) {
	if hit {
		c.metrics.getCount.With(hitLabels).Inc()
		c.metrics.getTime.With(hitLabels).Add(float64(getDuration))
	} else {
		c.metrics.getCount.With(missLabels).Inc()
		c.metrics.getTime.With(missLabels).Add(float64(getDuration))
	}
}

func (c *Cache[K, _]) TryRemove(key K) bool {
	removed := c.LazyCacher.TryRemove(key)
	c.metrics.len.Set(float64(c.LazyCacher.Len()))
	return removed
}

func (c *Cache[_, _]) Flush() {
	c.LazyCacher.Flush()
	c.metrics.len.Set(float64(c.LazyCacher.Len()))
}
