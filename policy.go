// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"log/slog"

	"github.com/luxfi/lazycache/memstats"
)

// EvictionPolicy reports whether the cache is currently over capacity. It is
// called again after every single eviction and must not cache its answer.
type EvictionPolicy func() bool

// MemoryPressure returns a policy that is over capacity while the fraction of
// host memory in use exceeds threshold(). A failed reading is logged and
// treated as not over capacity.
func MemoryPressure(reader memstats.Reader, threshold func() float32, logger *slog.Logger) EvictionPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return func() bool {
		stats, err := reader.Read()
		if err != nil {
			logger.Warn("failed to read memory statistics",
				slog.String("error", err.Error()))
			return false
		}
		return stats.OccupiedFraction() > float64(threshold())
	}
}

// Never is a policy that never evicts.
func Never() bool { return false }
