// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memstats reads host physical memory occupancy.
package memstats

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
)

// ErrUnavailable is returned when the host does not report the fields needed
// to compute occupancy.
var ErrUnavailable = errors.New("memory statistics unavailable")

// Stats is a point-in-time reading of physical memory, in bytes.
type Stats struct {
	Total     uint64
	Available uint64
}

// OccupiedFraction returns the fraction of total memory in use (0 --> 1).
func (s Stats) OccupiedFraction() float64 {
	if s.Total == 0 {
		return 0
	}
	if s.Available >= s.Total {
		return 0
	}
	return 1 - float64(s.Available)/float64(s.Total)
}

// Reader samples memory statistics. Every call takes a fresh reading.
type Reader interface {
	Read() (Stats, error)
}

// ProcReader reads /proc/meminfo.
type ProcReader struct {
	fs procfs.FS
}

// NewProcReader opens the default /proc mount.
func NewProcReader() (*ProcReader, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("opening procfs: %w", err)
	}
	return &ProcReader{fs: fs}, nil
}

// NewProcReaderAt opens a proc filesystem mounted at mountPoint.
func NewProcReaderAt(mountPoint string) (*ProcReader, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("opening procfs at %s: %w", mountPoint, err)
	}
	return &ProcReader{fs: fs}, nil
}

// Read implements Reader. Kernels without MemAvailable fall back to MemFree.
func (r *ProcReader) Read() (Stats, error) {
	info, err := r.fs.Meminfo()
	if err != nil {
		return Stats{}, fmt.Errorf("reading meminfo: %w", err)
	}
	if info.MemTotal == nil {
		return Stats{}, fmt.Errorf("%w: MemTotal missing", ErrUnavailable)
	}
	available := info.MemAvailable
	if available == nil {
		available = info.MemFree
	}
	if available == nil {
		return Stats{}, fmt.Errorf("%w: MemAvailable and MemFree missing", ErrUnavailable)
	}
	// meminfo reports kB
	return Stats{
		Total:     *info.MemTotal * 1024,
		Available: *available * 1024,
	}, nil
}

var _ Reader = (*ProcReader)(nil)
