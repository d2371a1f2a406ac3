// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metercacher

import (
	"errors"

	"github.com/luxfi/metric"

	"github.com/luxfi/lazycache"
)

const (
	resultLabel = "result"
	hitResult   = "hit"
	missResult  = "miss"

	reasonLabel = "reason"
)

var (
	resultLabels = []string{resultLabel}
	hitLabels    = metric.Labels{resultLabel: hitResult}
	missLabels   = metric.Labels{resultLabel: missResult}
)

var _ lazycache.Observer[struct{}, struct{}] = (*Metrics[struct{}, struct{}])(nil)

// Metrics records cache activity. It is also an Observer, so it can be passed
// to lazycache.WithObserver to count loads and unloads.
type Metrics[K comparable, V any] struct {
	getCount metric.CounterVec
	getTime  metric.CounterVec

	putCount metric.Counter
	putTime  metric.Counter

	hardFaults   metric.Counter
	unloads      metric.CounterVec
	materialized metric.Gauge

	len metric.Gauge
}

// NewMetrics creates the cache metrics and registers them with registry.
func NewMetrics[K comparable, V any](
	namespace string,
	registry metric.Registry,
) (*Metrics[K, V], error) {
	m := &Metrics[K, V]{
		getCount: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "get_count",
				Help:      "number of get calls",
			},
			resultLabels,
		),
		getTime: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "get_time",
				Help:      "time spent (ns) in get calls",
			},
			resultLabels,
		),
		putCount: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "put_count",
			Help:      "number of put calls",
		}),
		putTime: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "put_time",
			Help:      "time spent (ns) in put calls, including eviction",
		}),
		hardFaults: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "hard_faults",
			Help:      "number of values constructed",
		}),
		unloads: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "unloads",
				Help:      "number of values unloaded",
			},
			[]string{reasonLabel},
		),
		materialized: metric.NewGauge(metric.GaugeOpts{
			Namespace: namespace,
			Name:      "materialized",
			Help:      "number of values currently in memory",
		}),
		len: metric.NewGauge(metric.GaugeOpts{
			Namespace: namespace,
			Name:      "len",
			Help:      "number of entries",
		}),
	}
	err := errors.Join(
		registry.Register(metric.AsCollector(m.getCount)),
		registry.Register(metric.AsCollector(m.getTime)),
		registry.Register(metric.AsCollector(m.putCount)),
		registry.Register(metric.AsCollector(m.putTime)),
		registry.Register(metric.AsCollector(m.hardFaults)),
		registry.Register(metric.AsCollector(m.unloads)),
		registry.Register(metric.AsCollector(m.materialized)),
		registry.Register(metric.AsCollector(m.len)),
	)
	return m, err
}

func (m *Metrics[K, V]) OnLoaded(K, V) {
	m.hardFaults.Inc()
	m.materialized.Inc()
}

func (m *Metrics[K, V]) OnUnloaded(_ K, _ V, reason lazycache.Reason) {
	m.unloads.WithLabelValues(reason.String()).Inc()
	m.materialized.Dec()
}
