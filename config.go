// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import (
	"errors"
	"math"

	"github.com/caarlos0/env/v11"
)

// ErrParsingConfig is returned when environment variables cannot be parsed
// into a Config.
var ErrParsingConfig = errors.New("failed to parse lazycache config")

// Config holds the tunables of a Cache.
type Config struct {
	// MaxOccupancy is the fraction of host memory above which the default
	// policy evicts. Clamped to [0, 1]; ignored by custom policies.
	MaxOccupancy float32 `env:"MAX_OCCUPANCY" envDefault:"0.8"`

	// ForceReclaimOnEviction asks the runtime to return memory to the OS
	// after each eviction that released a value.
	ForceReclaimOnEviction bool `env:"FORCE_RECLAIM_ON_EVICTION" envDefault:"true"`

	// Shards is the number of entry map shards, rounded up to a power of two.
	Shards int `env:"SHARDS" envDefault:"64"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxOccupancy:           0.8,
		ForceReclaimOnEviction: true,
		Shards:                 defaultShards,
	}
}

// LoadConfig reads a Config from environment variables, each name prefixed
// with prefix (e.g. "LAZYCACHE_" reads LAZYCACHE_MAX_OCCUPANCY).
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

func clampFraction(f float32) float32 {
	switch {
	case math.IsNaN(float64(f)):
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
