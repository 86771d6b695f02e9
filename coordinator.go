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
	"context"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/tochemey/reqcache/internal/syncmap"
	"github.com/tochemey/reqcache/log"
)

// Producer issues the underlying network call for a coordinated request. It
// is treated as an opaque asynchronous unit of work that always settles; the
// collaborator is expected to enforce its own timeout.
type Producer func(ctx context.Context) (any, error)

// CallConfig carries the per-call knobs of a coordinated request.
type CallConfig struct {
	// Debounce delays the producer invocation; calls arriving during the
	// window share the single delayed flight.
	Debounce time.Duration
	// Throttle enforces a minimum spacing between successive producer
	// invocations for the same key. A throttled call waits out the remaining
	// spacing, it is never dropped.
	Throttle time.Duration
	// CacheTTL is the freshness window of the coordinator-level result cache.
	// Zero disables result caching for the call; the request is then only
	// deduplicated and throttled.
	CacheTTL time.Duration
}

// CallOption overrides one CallConfig knob for a single coordinated request.
type CallOption interface {
	// Apply applies the override to the given CallConfig.
	Apply(config *CallConfig)
}

// enforce compilation error if CallOptionFunc does not implement CallOption
var _ CallOption = CallOptionFunc(nil)

// CallOptionFunc is a function type that implements the CallOption interface.
type CallOptionFunc func(config *CallConfig)

// Apply applies the CallOptionFunc to the given CallConfig.
func (f CallOptionFunc) Apply(config *CallConfig) {
	f(config)
}

// WithDebounce overrides the debounce window for one call.
func WithDebounce(debounce time.Duration) CallOption {
	return CallOptionFunc(func(config *CallConfig) {
		config.Debounce = debounce
	})
}

// WithThrottle overrides the per-key throttle spacing for one call.
func WithThrottle(throttle time.Duration) CallOption {
	return CallOptionFunc(func(config *CallConfig) {
		config.Throttle = throttle
	})
}

// WithResultTTL overrides the coordinator result-cache freshness for one call.
func WithResultTTL(ttl time.Duration) CallOption {
	return CallOptionFunc(func(config *CallConfig) {
		config.CacheTTL = ttl
	})
}

// WithNoResultCache disables result caching for one call. The call is still
// deduplicated against identical in-flight requests and throttled.
func WithNoResultCache() CallOption {
	return CallOptionFunc(func(config *CallConfig) {
		config.CacheTTL = 0
	})
}

// coordEntry is a coordinator-level cached result.
type coordEntry struct {
	value    any
	storedAt time.Time
}

// coordinator wraps producers with deduplication, debounce, throttle, a
// global concurrency cap and result caching.
type coordinator struct {
	defaults CallConfig
	flights  singleflight.Group
	sem      *semaphore.Weighted
	fast     *lru.Cache[string, coordEntry]
	lastRun  *syncmap.Map[string, time.Time]
	store    Store
	policy   *ActivationPolicy
	monitor  *Monitor
	guard    *producerGuard
	inst     *instrumentation
	logger   log.Logger
}

func newCoordinator(config *Config, store Store, policy *ActivationPolicy, monitor *Monitor, inst *instrumentation) (*coordinator, error) {
	fast, err := lru.New[string, coordEntry](config.FastCacheCapacity())
	if err != nil {
		return nil, err
	}

	return &coordinator{
		defaults: config.CallDefaults(),
		sem:      semaphore.NewWeighted(config.MaxConcurrent()),
		fast:     fast,
		lastRun:  syncmap.New[string, time.Time](),
		store:    store,
		policy:   policy,
		monitor:  monitor,
		guard:    newProducerGuard(config.RateLimit(), config.CircuitBreaker()),
		inst:     inst,
		logger:   config.Logger(),
	}, nil
}

// coordinate routes one request for cacheType/key through the coordinator.
//
// Order of operations: coordinator result cache, in-flight deduplication,
// debounce, per-key throttle, global concurrency cap, producer invocation.
// N concurrent calls with the same type and key produce exactly one producer
// invocation; every caller observes its result or its error verbatim.
func (c *coordinator) coordinate(ctx context.Context, cacheType string, key string, producer Producer, opts ...CallOption) (any, error) {
	if producer == nil {
		return nil, ErrNilProducer
	}

	config := c.defaults
	for _, opt := range opts {
		opt.Apply(&config)
	}

	composite := cacheType + ":" + key
	c.policy.RecordCall(cacheType)

	if config.CacheTTL > 0 {
		if entry, ok := c.fast.Get(composite); ok {
			if time.Since(entry.storedAt) < config.CacheTTL {
				id := c.monitor.StartRequest(composite, methodGet, nil)
				c.monitor.EndRequest(id, 0, true)
				return entry.value, nil
			}
			c.fast.Remove(composite)
		}
	}

	value, err, shared := c.flights.Do(composite, func() (any, error) {
		return c.execute(ctx, cacheType, composite, key, producer, config)
	})
	if shared {
		c.logger.Debugf("request key=%s shared an in-flight call", composite)
	}
	return value, err
}

// execute runs the single shared flight for a key.
func (c *coordinator) execute(ctx context.Context, cacheType string, composite string, key string, producer Producer, config CallConfig) (any, error) {
	if config.Debounce > 0 {
		if err := sleepContext(ctx, config.Debounce); err != nil {
			return nil, err
		}
	}

	if config.Throttle > 0 {
		if wait := c.throttleDelay(composite, config.Throttle); wait > 0 {
			c.logger.Debugf("throttling key=%s for %s", composite, wait)
			if err := sleepContext(ctx, wait); err != nil {
				return nil, err
			}
		}
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	c.lastRun.Set(composite, time.Now())

	id := c.monitor.StartRequest(composite, methodGet, nil)
	ctx, finish := c.inst.start(ctx, "coordinate", cacheType)

	started := time.Now()
	value, err := c.guard.wrap(producer)(ctx)
	elapsed := time.Since(started)

	c.policy.RecordSample(cacheType, elapsed)
	finish(err)

	if err != nil {
		c.monitor.ErrorRequest(id, err.Error())
		return nil, err
	}

	c.monitor.EndRequest(id, 0, false)

	if config.CacheTTL > 0 {
		c.fast.Add(composite, coordEntry{value: value, storedAt: time.Now()})
		c.store.SetKey(cacheType, key, value)
	}
	return value, nil
}

// throttleDelay returns the remaining wait before the key may be invoked
// again.
func (c *coordinator) throttleDelay(composite string, throttle time.Duration) time.Duration {
	last, ok := c.lastRun.Get(composite)
	if !ok {
		return 0
	}
	if since := time.Since(last); since < throttle {
		return throttle - since
	}
	return 0
}

// invalidateResults drops the coordinator-level cached results of cacheType
// whose key matches pattern, along with their in-flight dedup entries so the
// next call starts a fresh flight. A nil pattern drops every result of the
// type. It returns the number of dropped results.
func (c *coordinator) invalidateResults(cacheType string, pattern *regexp.Regexp) int {
	prefix := cacheType + ":"
	removed := 0
	for _, composite := range c.fast.Keys() {
		key, ok := strings.CutPrefix(composite, prefix)
		if !ok {
			continue
		}
		if pattern != nil && !pattern.MatchString(key) {
			continue
		}
		c.fast.Remove(composite)
		c.flights.Forget(composite)
		removed++
	}
	return removed
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
