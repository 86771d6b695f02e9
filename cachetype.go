/*
 * MIT License
 *
 * Copyright (c) 2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package reqcache

import (
	"time"
)

// CacheTypeConfig describes one logical cache partition. Each cache type owns
// its own TTL, size bound and activation policy.
type CacheTypeConfig struct {
	// Name identifies the partition, e.g. "metrics" or "ranking".
	Name string

	// TTL is the lifetime of an entry. It must be positive unless the type is
	// Permanent.
	TTL time.Duration

	// MaxSize bounds the number of entries held by the type. When the bound
	// is reached the oldest-inserted entry is evicted before insertion.
	MaxSize int

	// Permanent marks entries of this type as non-expiring. TTL is ignored.
	Permanent bool

	// AutoActivate starts the type inactive. Writes are dropped until the
	// activation policy promotes the type based on observed latency or usage.
	AutoActivate bool

	// PerformanceThreshold is the response-time bound above which a single
	// observed sample promotes an auto-activated type.
	PerformanceThreshold time.Duration

	// UsageThreshold is the call count at which an auto-activated type is
	// promoted.
	UsageThreshold int
}

// TypeStats is a point-in-time snapshot of one cache type's counters.
type TypeStats struct {
	Name        string  `json:"name"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Sets        uint64  `json:"sets"`
	Deletes     uint64  `json:"deletes"`
	Clears      uint64  `json:"clears"`
	Size        int     `json:"size"`
	HitRate     float64 `json:"hit_rate"`
	MemoryBytes int64   `json:"memory_bytes"`
	Active      bool    `json:"active"`
}

// cacheEntry is a single stored value with its expiry and access metadata.
// Access metadata is kept for diagnostics even though eviction is
// insertion-ordered.
type cacheEntry struct {
	data           any
	createdAt      time.Time
	expiresAt      time.Time
	accessCount    uint64
	lastAccessedAt time.Time
}

// expired reports whether the entry is past its expiry at the given instant.
// Permanent entries carry a zero expiresAt and never expire.
func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
