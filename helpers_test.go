package lazycache

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lazycache/memstats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ForceReclaimOnEviction = false
	cfg.Shards = 4
	return cfg
}

func newTestCache[K comparable, V any](t *testing.T, policy EvictionPolicy, opts ...Option[K, V]) *Cache[K, V] {
	t.Helper()

	opts = append([]Option[K, V]{
		WithPolicy[K, V](policy),
		WithLogger[K, V](discardLogger()),
	}, opts...)
	c, err := New[K, V](testConfig(), opts...)
	require.NoError(t, err)
	return c
}

// countdown returns a policy that reports over capacity n more times.
func countdown(n *int) EvictionPolicy {
	return func() bool {
		if *n > 0 {
			*n--
			return true
		}
		return false
	}
}

func double(key int) (int, error) {
	return key * 2, nil
}

func read[K comparable, V any](t *testing.T, c *Cache[K, V], key K) V {
	t.Helper()

	v, err := c.Get(key)
	require.NoError(t, err)
	value, err := v.Value()
	require.NoError(t, err)
	return value
}

type transition[K comparable] struct {
	key    K
	loaded bool
	reason Reason
}

type recorder[K comparable, V any] struct {
	mu     sync.Mutex
	events []transition[K]
}

func (r *recorder[K, V]) OnLoaded(key K, _ V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, transition[K]{key: key, loaded: true})
}

func (r *recorder[K, V]) OnUnloaded(key K, _ V, reason Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, transition[K]{key: key, reason: reason})
}

func (r *recorder[K, V]) unloaded(reason Reason) []K {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []K
	for _, e := range r.events {
		if !e.loaded && e.reason == reason {
			keys = append(keys, e.key)
		}
	}
	return keys
}

type fixedMemory struct {
	stats memstats.Stats
	err   error
}

func (f *fixedMemory) Read() (memstats.Stats, error) {
	return f.stats, f.err
}

// requireConsistent checks that every key in the recency order has an entry.
func requireConsistent[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	t.Helper()

	var keys []K
	for k := range c.All() {
		keys = append(keys, k)
	}
	for _, k := range c.order.Keys() {
		require.True(t, slices.Contains(keys, k), "tracked key %v has no entry", k)
	}
}
