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
	"encoding/json"
	"regexp"
	"sync"
	"time"

	"github.com/tochemey/reqcache/log"
)

// Store defines the type-partitioned TTL cache consumed by UI-facing code.
//
// Every cache type registered in the configuration owns its own entry map,
// TTL, size bound and counters. Values are opaque to the store. Params-based
// methods derive the entry key with Key; the *Key variants accept a
// pre-derived key and are what the request coordinator uses.
type Store interface {
	// Set stores data under the key derived from params. It returns false
	// when the cache type is unknown, or when the type is auto-activated and
	// the activation policy has not yet promoted it.
	Set(cacheType string, params Params, data any) bool

	// SetKey behaves like Set with a pre-derived key.
	SetKey(cacheType string, key string, data any) bool

	// Get returns the stored value for params. A miss, an unknown type or an
	// expired entry returns false; expired entries are deleted on access.
	Get(cacheType string, params Params) (any, bool)

	// GetKey behaves like Get with a pre-derived key.
	GetKey(cacheType string, key string) (any, bool)

	// Has reports whether a fresh entry exists without touching access
	// metadata or the hit/miss counters.
	Has(cacheType string, params Params) bool

	// Delete removes the entry for params, reporting whether one existed.
	Delete(cacheType string, params Params) bool

	// DeleteKey behaves like Delete with a pre-derived key.
	DeleteKey(cacheType string, key string) bool

	// Clear removes every entry of the given type and returns the count.
	Clear(cacheType string) int

	// ClearAll removes every entry across all types and returns the count.
	ClearAll() int

	// InvalidatePattern removes every entry of the type whose key matches
	// pattern and returns the count.
	InvalidatePattern(cacheType string, pattern *regexp.Regexp) int

	// Stats returns a snapshot of the type's counters.
	Stats(cacheType string) (TypeStats, bool)

	// AllStats returns snapshots for every registered type.
	AllStats() map[string]TypeStats
}

// activationChecker is the narrow view of the activation policy the store
// needs to gate writes.
type activationChecker interface {
	Active(cacheType string) bool
}

type memoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*partition
	policy     activationChecker
	logger     log.Logger
}

var _ Store = (*memoryStore)(nil)

// partition holds the entries and counters of a single cache type. The order
// slice tracks insertion order for eviction; it never contains a key missing
// from entries.
type partition struct {
	mu      sync.Mutex
	config  CacheTypeConfig
	entries map[string]*cacheEntry
	order   []string
	hits    uint64
	misses  uint64
	sets    uint64
	deletes uint64
	clears  uint64
}

func newMemoryStore(types []CacheTypeConfig, policy activationChecker, logger log.Logger) *memoryStore {
	partitions := make(map[string]*partition, len(types))
	for _, config := range types {
		partitions[config.Name] = &partition{
			config:  config,
			entries: make(map[string]*cacheEntry),
		}
	}
	return &memoryStore{
		partitions: partitions,
		policy:     policy,
		logger:     logger,
	}
}

func (s *memoryStore) partition(cacheType string) (*partition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	part, ok := s.partitions[cacheType]
	return part, ok
}

func (s *memoryStore) Set(cacheType string, params Params, data any) bool {
	return s.SetKey(cacheType, Key(params), data)
}

func (s *memoryStore) SetKey(cacheType string, key string, data any) bool {
	part, ok := s.partition(cacheType)
	if !ok {
		s.logger.Warnf("set on unknown cache type=%s", cacheType)
		return false
	}

	if part.config.AutoActivate && !s.policy.Active(cacheType) {
		s.logger.Debugf("cache type=%s is inactive, dropping set for key=%s", cacheType, key)
		return false
	}

	now := time.Now()
	part.mu.Lock()
	defer part.mu.Unlock()

	if _, exists := part.entries[key]; !exists {
		// evict the oldest-inserted entry once the bound is hit
		for len(part.entries) >= part.config.MaxSize && len(part.order) > 0 {
			oldest := part.order[0]
			part.order = part.order[1:]
			if _, ok := part.entries[oldest]; ok {
				delete(part.entries, oldest)
				part.deletes++
			}
		}
		part.order = append(part.order, key)
	}

	entry := &cacheEntry{
		data:           data,
		createdAt:      now,
		lastAccessedAt: now,
	}
	if !part.config.Permanent {
		entry.expiresAt = now.Add(part.config.TTL)
	}

	part.entries[key] = entry
	part.sets++
	return true
}

func (s *memoryStore) Get(cacheType string, params Params) (any, bool) {
	return s.GetKey(cacheType, Key(params))
}

func (s *memoryStore) GetKey(cacheType string, key string) (any, bool) {
	part, ok := s.partition(cacheType)
	if !ok {
		return nil, false
	}

	now := time.Now()
	part.mu.Lock()
	defer part.mu.Unlock()

	entry, ok := part.entries[key]
	if !ok {
		part.misses++
		return nil, false
	}

	if entry.expired(now) {
		part.removeLocked(key)
		part.misses++
		return nil, false
	}

	entry.accessCount++
	entry.lastAccessedAt = now
	part.hits++
	return entry.data, true
}

func (s *memoryStore) Has(cacheType string, params Params) bool {
	part, ok := s.partition(cacheType)
	if !ok {
		return false
	}

	part.mu.Lock()
	defer part.mu.Unlock()

	entry, ok := part.entries[Key(params)]
	return ok && !entry.expired(time.Now())
}

func (s *memoryStore) Delete(cacheType string, params Params) bool {
	return s.DeleteKey(cacheType, Key(params))
}

func (s *memoryStore) DeleteKey(cacheType string, key string) bool {
	part, ok := s.partition(cacheType)
	if !ok {
		return false
	}

	part.mu.Lock()
	defer part.mu.Unlock()

	if _, ok := part.entries[key]; !ok {
		return false
	}

	part.removeLocked(key)
	part.deletes++
	return true
}

func (s *memoryStore) Clear(cacheType string) int {
	part, ok := s.partition(cacheType)
	if !ok {
		return 0
	}

	part.mu.Lock()
	defer part.mu.Unlock()

	removed := len(part.entries)
	part.entries = make(map[string]*cacheEntry)
	part.order = nil
	part.clears++
	return removed
}

func (s *memoryStore) ClearAll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	removed := 0
	for name := range s.partitions {
		part := s.partitions[name]
		part.mu.Lock()
		removed += len(part.entries)
		part.entries = make(map[string]*cacheEntry)
		part.order = nil
		part.clears++
		part.mu.Unlock()
	}
	return removed
}

func (s *memoryStore) InvalidatePattern(cacheType string, pattern *regexp.Regexp) int {
	part, ok := s.partition(cacheType)
	if !ok {
		return 0
	}

	part.mu.Lock()
	defer part.mu.Unlock()

	removed := 0
	for key := range part.entries {
		if pattern.MatchString(key) {
			part.removeLocked(key)
			part.deletes++
			removed++
		}
	}
	return removed
}

func (s *memoryStore) Stats(cacheType string) (TypeStats, bool) {
	part, ok := s.partition(cacheType)
	if !ok {
		return TypeStats{}, false
	}

	part.mu.Lock()
	defer part.mu.Unlock()
	return part.statsLocked(s.policy, s.logger), true
}

func (s *memoryStore) AllStats() map[string]TypeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]TypeStats, len(s.partitions))
	for name, part := range s.partitions {
		part.mu.Lock()
		stats[name] = part.statsLocked(s.policy, s.logger)
		part.mu.Unlock()
	}
	return stats
}

// sweepExpired proactively removes expired entries across all types. It is
// run periodically by the engine in addition to lazy expiry on access.
func (s *memoryStore) sweepExpired() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	removed := 0
	for _, part := range s.partitions {
		part.mu.Lock()
		for key, entry := range part.entries {
			if entry.expired(now) {
				part.removeLocked(key)
				part.deletes++
				removed++
			}
		}
		part.mu.Unlock()
	}
	return removed
}

func (p *partition) removeLocked(key string) {
	delete(p.entries, key)
	for idx, ordered := range p.order {
		if ordered == key {
			p.order = append(p.order[:idx], p.order[idx+1:]...)
			break
		}
	}
}

func (p *partition) statsLocked(policy activationChecker, logger log.Logger) TypeStats {
	stats := TypeStats{
		Name:    p.config.Name,
		Hits:    p.hits,
		Misses:  p.misses,
		Sets:    p.sets,
		Deletes: p.deletes,
		Clears:  p.clears,
		Size:    len(p.entries),
		Active:  !p.config.AutoActivate || policy.Active(p.config.Name),
	}

	if total := p.hits + p.misses; total > 0 {
		stats.HitRate = float64(p.hits) / float64(total)
	}

	for _, entry := range p.entries {
		encoded, err := json.Marshal(entry.data)
		if err != nil {
			// malformed values degrade to a zero-sized footprint
			logger.Warnf("failed to size cache entry in type=%s: %v", p.config.Name, err)
			continue
		}
		stats.MemoryBytes += int64(len(encoded))
	}
	return stats
}
