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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tochemey/reqcache/admin"
)

// Engine is the composition root of reqcache. It owns the cache store, the
// activation policy, the request coordinator, the invalidation engine, the
// request monitor and the smart refresh manager, and runs their periodic
// loops.
//
// Consumers hold one Engine per application and pass it (or the component
// handles it exposes) to whatever needs cached, coordinated data access.
type Engine interface {
	// Coordinate routes one request for cacheType/key through the request
	// coordinator: result cache, in-flight deduplication, debounce, throttle
	// and the global concurrency cap, in that order. Concurrent calls with
	// identical cacheType and key share a single producer invocation and
	// observe the same result or error.
	Coordinate(ctx context.Context, cacheType string, key string, producer Producer, opts ...CallOption) (any, error)

	// Cache returns the TTL cache store.
	Cache() Store

	// Invalidation returns the rule-based invalidation engine.
	Invalidation() *InvalidationEngine

	// Monitor returns the request telemetry monitor.
	Monitor() *Monitor

	// Refresh returns the smart refresh manager.
	Refresh() *RefreshManager

	// ForceDeactivate manually demotes an auto-activated cache type and
	// clears its entries, returning the number of removed entries.
	ForceDeactivate(cacheType string) (int, error)

	// Start launches the periodic expiry sweep, the invalidation drain, the
	// refresh loops and the optional admin server.
	Start(ctx context.Context) error

	// Stop cancels the periodic loops and shuts down the admin server.
	// In-flight coordinated requests settle normally.
	Stop(ctx context.Context) error
}

type engine struct {
	config   *Config
	store    *memoryStore
	policy   *ActivationPolicy
	coord    *coordinator
	inval    *InvalidationEngine
	monitor  *Monitor
	refresh  *RefreshManager
	adminSrv *admin.Server

	started atomic.Bool
	stopped atomic.Bool
	stopSig chan struct{}
	wg      sync.WaitGroup
}

var _ Engine = (*engine)(nil)

// NewEngine creates a reqcache engine from the given configuration.
func NewEngine(config *Config) (Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy := newActivationPolicy(config.CacheTypes())
	store := newMemoryStore(config.CacheTypes(), policy, config.Logger())
	monitor := NewMonitor(config.MonitorCapacity())
	inst := newInstrumentation(config)

	coord, err := newCoordinator(config, store, policy, monitor, inst)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	eng := &engine{
		config:  config,
		store:   store,
		policy:  policy,
		coord:   coord,
		inval:   newInvalidationEngine(store, coord, config.Logger()),
		monitor: monitor,
		refresh: newRefreshManager(coord, config.Activity(), config.Flags(), config.Logger()),
		stopSig: make(chan struct{}),
	}

	if config.AdminConfig() != nil {
		eng.adminSrv = admin.NewServer(*config.AdminConfig(), newAdminProvider(eng), config.Logger())
	}
	return eng, nil
}

func (e *engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	e.config.Logger().Infof("reqcache engine starting with %d cache types", len(e.config.CacheTypes()))

	if e.adminSrv != nil {
		if err := e.adminSrv.Start(ctx); err != nil {
			e.started.Store(false)
			return fmt.Errorf("failed to start admin server: %w", err)
		}
	}

	e.wg.Add(2)
	go e.sweepLoop()
	go e.drainLoop()
	e.refresh.start(ctx)

	e.config.Logger().Infof("reqcache engine started")
	return nil
}

func (e *engine) Stop(ctx context.Context) error {
	if !e.started.Load() || !e.stopped.CompareAndSwap(false, true) {
		return nil
	}

	e.config.Logger().Infof("reqcache engine stopping...")

	close(e.stopSig)
	e.wg.Wait()
	e.refresh.stopAll()
	e.inval.stop()

	if e.adminSrv != nil {
		if err := e.adminSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down admin server: %w", err)
		}
	}

	e.config.Logger().Infof("reqcache engine stopped")
	return nil
}

func (e *engine) Coordinate(ctx context.Context, cacheType string, key string, producer Producer, opts ...CallOption) (any, error) {
	if e.stopped.Load() {
		return nil, ErrEngineStopped
	}
	return e.coord.coordinate(ctx, cacheType, key, producer, opts...)
}

func (e *engine) Cache() Store {
	return e.store
}

func (e *engine) Invalidation() *InvalidationEngine {
	return e.inval
}

func (e *engine) Monitor() *Monitor {
	return e.monitor
}

func (e *engine) Refresh() *RefreshManager {
	return e.refresh
}

func (e *engine) ForceDeactivate(cacheType string) (int, error) {
	if _, ok := e.store.partition(cacheType); !ok {
		return 0, ErrCacheTypeNotFound
	}

	e.policy.Deactivate(cacheType)
	removed := e.store.Clear(cacheType)
	e.coord.invalidateResults(cacheType, nil)
	e.config.Logger().Infof("cache type=%s deactivated, %d entries cleared", cacheType, removed)
	return removed, nil
}

// sweepLoop proactively removes expired entries across all cache types.
func (e *engine) sweepLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.SweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-e.stopSig:
			return
		case <-ticker.C:
			if removed := e.store.sweepExpired(); removed > 0 {
				e.config.Logger().Debugf("expiry sweep removed %d entries", removed)
			}
		}
	}
}

// drainLoop periodically drains the invalidation queue, picking up events
// whose immediate drain attempt was dropped by the reentrancy guard.
func (e *engine) drainLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.DrainInterval())
	defer ticker.Stop()

	for {
		select {
		case <-e.stopSig:
			return
		case <-ticker.C:
			e.inval.Drain()
		}
	}
}
