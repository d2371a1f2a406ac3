// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lazycache

import "errors"

var (
	// ErrKeyNotFound is returned when a key is not registered, or when a
	// handle outlives the entry it was obtained from.
	ErrKeyNotFound = errors.New("key not found")

	// ErrConstructionFailed wraps errors returned by a constructor. The entry
	// stays unmaterialized and the next read retries.
	ErrConstructionFailed = errors.New("construction failed")

	// ErrDuplicateKey is returned by Add when the key is already registered.
	ErrDuplicateKey = errors.New("duplicate key")
)
