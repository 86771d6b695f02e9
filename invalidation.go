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
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/reqcache/log"
)

// Priority orders invalidation events within one drain cycle.
type Priority int

const (
	// PriorityLow is applied last within a drain.
	PriorityLow Priority = iota + 1
	// PriorityMedium is applied after high-priority events.
	PriorityMedium
	// PriorityHigh is applied first within a drain.
	PriorityHigh
)

// String renders a priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// InvalidationRule declares which cache types an application event
// invalidates.
type InvalidationRule struct {
	// EventType matches InvalidationEvent.EventType.
	EventType string
	// Pattern selects the keys to remove within each affected type.
	Pattern *regexp.Regexp
	// CacheTypes lists the affected cache types. Duplicates are ignored.
	CacheTypes []string
	// Priority orders this rule's events within a drain cycle.
	Priority Priority
	// Debounce coalesces bursts: repeated events within the window reset the
	// timer so only the last event triggers the invalidation pass.
	Debounce time.Duration
}

// InvalidationEvent is a fired application event awaiting processing.
type InvalidationEvent struct {
	EventType string
	Payload   any
	FiredAt   time.Time
	Source    string
}

// InvalidationStats is a snapshot of the engine's counters.
type InvalidationStats struct {
	Rules          int    `json:"rules"`
	Queued         int    `json:"queued"`
	Processed      uint64 `json:"processed"`
	Dropped        uint64 `json:"dropped"`
	PendingTimers  int    `json:"pending_timers"`
	EntriesRemoved uint64 `json:"entries_removed"`
}

// resultCache is the coordinator-level result cache dropped alongside the
// store, so an invalidated key is refetched instead of served from the
// coordinator's fast path.
type resultCache interface {
	invalidateResults(cacheType string, pattern *regexp.Regexp) int
}

// InvalidationEngine matches fired application events against declarative
// rules and removes matching entries from the cache store.
//
// Firing an event enqueues it and attempts an immediate drain; a periodic
// drain picks up anything left behind. Drains are guarded against reentrancy:
// a drain that arrives while one is running is dropped, the next tick
// processes the queued events.
type InvalidationEngine struct {
	mu             sync.Mutex
	rules          map[string]InvalidationRule
	queue          []InvalidationEvent
	timers         map[string]*time.Timer
	draining       atomic.Bool
	processed      atomic.Uint64
	dropped        atomic.Uint64
	entriesRemoved atomic.Uint64
	store          Store
	results        resultCache
	logger         log.Logger
}

func newInvalidationEngine(store Store, results resultCache, logger log.Logger) *InvalidationEngine {
	return &InvalidationEngine{
		rules:   make(map[string]InvalidationRule),
		timers:  make(map[string]*time.Timer),
		store:   store,
		results: results,
		logger:  logger,
	}
}

// AddRule registers a rule, replacing any existing rule for the event type.
func (e *InvalidationEngine) AddRule(rule InvalidationRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[rule.EventType] = rule
}

// RemoveRule unregisters the rule for the event type, reporting whether one
// existed.
func (e *InvalidationEngine) RemoveRule(eventType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[eventType]; !ok {
		return false
	}
	delete(e.rules, eventType)
	return true
}

// Trigger fires an application event. The event is queued and an immediate
// drain is attempted.
func (e *InvalidationEngine) Trigger(eventType string, payload any, source string) {
	event := InvalidationEvent{
		EventType: eventType,
		Payload:   payload,
		FiredAt:   time.Now(),
		Source:    source,
	}

	e.mu.Lock()
	e.queue = append(e.queue, event)
	e.mu.Unlock()

	e.Drain()
}

// Drain processes the queued events in rule priority order. It returns
// immediately when another drain is already running.
func (e *InvalidationEngine) Drain() {
	if !e.draining.CompareAndSwap(false, true) {
		return
	}
	defer e.draining.Store(false)

	e.mu.Lock()
	events := e.queue
	e.queue = nil

	// resolve each event's rule up front so the sort sees priorities
	type matched struct {
		event InvalidationEvent
		rule  InvalidationRule
	}
	matches := make([]matched, 0, len(events))
	for _, event := range events {
		rule, ok := e.rules[event.EventType]
		if !ok {
			e.dropped.Add(1)
			e.logger.Debugf("no invalidation rule for event=%s from source=%s", event.EventType, event.Source)
			continue
		}
		matches = append(matches, matched{event: event, rule: rule})
	}
	e.mu.Unlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rule.Priority > matches[j].rule.Priority
	})

	for _, match := range matches {
		if match.rule.Debounce > 0 {
			e.scheduleDebounced(match.rule)
			continue
		}
		e.apply(match.rule)
	}
}

// scheduleDebounced delays the rule's invalidation pass, resetting the timer
// when the same rule fires again within the window.
func (e *InvalidationEngine) scheduleDebounced(rule InvalidationRule) {
	timerKey := rule.EventType
	if rule.Pattern != nil {
		timerKey += "|" + rule.Pattern.String()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if timer, ok := e.timers[timerKey]; ok {
		timer.Stop()
	}
	e.timers[timerKey] = time.AfterFunc(rule.Debounce, func() {
		e.mu.Lock()
		delete(e.timers, timerKey)
		e.mu.Unlock()
		e.apply(rule)
	})
}

// apply removes the entries matching the rule from every affected cache type.
func (e *InvalidationEngine) apply(rule InvalidationRule) {
	pattern := rule.Pattern
	if pattern == nil {
		pattern = regexp.MustCompile(".*")
	}

	types := goset.NewSet(rule.CacheTypes...)
	removed := 0
	for cacheType := range types.Iter() {
		removed += e.store.InvalidatePattern(cacheType, pattern)
		if e.results != nil {
			e.results.invalidateResults(cacheType, pattern)
		}
	}

	e.processed.Add(1)
	e.entriesRemoved.Add(uint64(removed))
	if removed > 0 {
		e.logger.Infof("invalidated %d entries for event=%s", removed, rule.EventType)
	}
}

// InvalidateByPattern immediately removes the entries matching pattern from
// the given cache types, bypassing the event queue. It returns the number of
// removed entries.
func (e *InvalidationEngine) InvalidateByPattern(pattern *regexp.Regexp, cacheTypes []string) int {
	types := goset.NewSet(cacheTypes...)
	removed := 0
	for cacheType := range types.Iter() {
		removed += e.store.InvalidatePattern(cacheType, pattern)
		if e.results != nil {
			e.results.invalidateResults(cacheType, pattern)
		}
	}
	e.entriesRemoved.Add(uint64(removed))
	return removed
}

// Stats returns a snapshot of the engine's counters.
func (e *InvalidationEngine) Stats() InvalidationStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return InvalidationStats{
		Rules:          len(e.rules),
		Queued:         len(e.queue),
		Processed:      e.processed.Load(),
		Dropped:        e.dropped.Load(),
		PendingTimers:  len(e.timers),
		EntriesRemoved: e.entriesRemoved.Load(),
	}
}

// stop cancels every pending debounce timer.
func (e *InvalidationEngine) stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, timer := range e.timers {
		timer.Stop()
		delete(e.timers, key)
	}
}
