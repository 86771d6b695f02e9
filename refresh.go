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
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowchartsman/retry"

	"github.com/tochemey/reqcache/log"
)

// autoRefreshFlagKey is the persisted key of the global auto-refresh flag.
const autoRefreshFlagKey = "reqcache:auto-refresh"

// defaultRefreshCacheType is the cache type coordinated refreshes run under
// when the refresher does not name a data domain.
const defaultRefreshCacheType = "refresh"

// ActivitySource reports the last detected user interaction. The UI glue is
// expected to forward pointer, key, scroll and touch events into it.
type ActivitySource interface {
	// LastInteraction returns the timestamp of the most recent interaction.
	LastInteraction() time.Time
}

// ActivityRecorder is the default ActivitySource. Call Touch from the host's
// interaction event handlers.
type ActivityRecorder struct {
	lastNanos atomic.Int64
}

var _ ActivitySource = (*ActivityRecorder)(nil)

// NewActivityRecorder creates an ActivityRecorder with no interaction
// recorded yet, which reads as idle.
func NewActivityRecorder() *ActivityRecorder {
	return &ActivityRecorder{}
}

// Touch records an interaction at the current instant.
func (r *ActivityRecorder) Touch() {
	r.lastNanos.Store(time.Now().UnixNano())
}

// LastInteraction returns the timestamp of the most recent Touch.
func (r *ActivityRecorder) LastInteraction() time.Time {
	nanos := r.lastNanos.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// FlagStore persists small key/value flags across reloads of the host.
type FlagStore interface {
	// Load returns the stored value for key and whether it exists.
	Load(key string) (string, bool, error)
	// Store persists value under key.
	Store(key string, value string) error
}

// MemoryFlagStore is a process-local FlagStore.
type MemoryFlagStore struct {
	mu    sync.RWMutex
	flags map[string]string
}

var _ FlagStore = (*MemoryFlagStore)(nil)

// NewMemoryFlagStore creates an empty MemoryFlagStore.
func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{flags: make(map[string]string)}
}

// Load returns the stored value for key and whether it exists.
func (s *MemoryFlagStore) Load(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.flags[key]
	return value, ok, nil
}

// Store persists value under key.
func (s *MemoryFlagStore) Store(key string, value string) error {
	s.mu.Lock()
	s.flags[key] = value
	s.mu.Unlock()
	return nil
}

// FileFlagStore persists flags as one file per key under a directory.
type FileFlagStore struct {
	dir string
}

var _ FlagStore = (*FileFlagStore)(nil)

// NewFileFlagStore creates a FileFlagStore rooted at dir.
func NewFileFlagStore(dir string) *FileFlagStore {
	return &FileFlagStore{dir: dir}
}

// Load returns the stored value for key and whether it exists.
func (s *FileFlagStore) Load(key string) (string, bool, error) {
	content, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(content), true, nil
}

// Store persists value under key.
func (s *FileFlagStore) Store(key string, value string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *FileFlagStore) path(key string) string {
	encoded := make([]byte, 0, len(key))
	for _, char := range []byte(key) {
		if char == '/' || char == ':' {
			char = '_'
		}
		encoded = append(encoded, char)
	}
	return s.dir + string(os.PathSeparator) + string(encoded)
}

// RefresherConfig describes one registered refresh callback.
type RefresherConfig struct {
	// Key identifies the refresher. Coordinated refreshes run under the
	// request key "refresh-<Key>".
	Key string
	// Fn produces the refreshed data.
	Fn Producer
	// CacheType is the data domain the refresh reports against. Defaults to
	// "refresh".
	CacheType string
	// Interval is the tick period.
	Interval time.Duration
	// MinIdle is the minimum time since the last user interaction before a
	// scheduled refresh may run.
	MinIdle time.Duration
	// Immediate runs one refresh right after registration.
	Immediate bool
	// Enabled gates this refresher independently of the global flag.
	Enabled bool
	// MaxAttempts bounds retries of a failed refresh. Values below 2 disable
	// retrying.
	MaxAttempts int
	// RetryInterval is the delay between retry attempts.
	RetryInterval time.Duration
}

type refresher struct {
	config RefresherConfig
	stop   chan struct{}
}

// RefreshManager periodically re-invokes registered refresh callbacks while
// the user is idle and auto-refresh is enabled.
//
// Every refresh is routed through the request coordinator with result
// caching disabled, so scheduled refreshes and manual fetches for the same
// key share deduplication and throttle state and can never race into two
// concurrent producer calls.
type RefreshManager struct {
	mu         sync.Mutex
	refreshers map[string]*refresher
	coord      *coordinator
	activity   ActivitySource
	flags      FlagStore
	logger     log.Logger
	enabled    bool
	started    bool
	runCtx     context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func newRefreshManager(coord *coordinator, activity ActivitySource, flags FlagStore, logger log.Logger) *RefreshManager {
	return &RefreshManager{
		refreshers: make(map[string]*refresher),
		coord:      coord,
		activity:   activity,
		flags:      flags,
		logger:     logger,
		enabled:    true,
	}
}

// start loads the persisted auto-refresh flag and launches the tick loop of
// every registered refresher.
func (m *RefreshManager) start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}

	if value, ok, err := m.flags.Load(autoRefreshFlagKey); err != nil {
		m.logger.Warnf("failed to load auto-refresh flag: %v", err)
	} else if ok {
		if enabled, err := strconv.ParseBool(value); err == nil {
			m.enabled = enabled
		}
	}

	m.runCtx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.started = true
	for _, entry := range m.refreshers {
		m.launchLocked(entry)
	}
}

// stopAll cancels every tick loop. In-flight refreshes are not aborted.
func (m *RefreshManager) stopAll() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()
}

// Register adds a refresher and returns its unregister function. The
// unregister stops future scheduled ticks only; a producer call already
// dispatched is not aborted.
func (m *RefreshManager) Register(config RefresherConfig) (func(), error) {
	if config.Fn == nil {
		return nil, ErrNilProducer
	}
	if config.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if config.CacheType == "" {
		config.CacheType = defaultRefreshCacheType
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.refreshers[config.Key]; ok {
		return nil, ErrRefresherExists
	}

	entry := &refresher{
		config: config,
		stop:   make(chan struct{}),
	}
	m.refreshers[config.Key] = entry
	if m.started {
		m.launchLocked(entry)
	}

	return func() { m.unregister(config.Key, entry) }, nil
}

func (m *RefreshManager) unregister(key string, entry *refresher) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.refreshers[key]; ok && current == entry {
		delete(m.refreshers, key)
		close(entry.stop)
	}
}

func (m *RefreshManager) launchLocked(entry *refresher) {
	m.wg.Add(1)
	ctx := m.runCtx
	go func() {
		defer m.wg.Done()
		m.loop(ctx, entry)
	}()
}

func (m *RefreshManager) loop(ctx context.Context, entry *refresher) {
	if entry.config.Immediate {
		m.tick(ctx, entry)
	}

	ticker := time.NewTicker(entry.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-entry.stop:
			return
		case <-ticker.C:
			m.tick(ctx, entry)
		}
	}
}

// tick runs one scheduled refresh when the gating conditions hold.
func (m *RefreshManager) tick(ctx context.Context, entry *refresher) {
	if !m.Enabled() || !entry.config.Enabled {
		return
	}

	if idle := time.Since(m.activity.LastInteraction()); idle < entry.config.MinIdle {
		m.logger.Debugf("skipping refresh key=%s, user active %s ago", entry.config.Key, idle)
		return
	}

	if _, err := m.runOnce(ctx, entry.config); err != nil {
		m.logger.Warnf("refresh key=%s failed: %v", entry.config.Key, err)
	}
}

// TriggerRefresh runs a registered refresher immediately, sharing dedup and
// throttle state with scheduled ticks for the same key.
func (m *RefreshManager) TriggerRefresh(ctx context.Context, key string) (any, error) {
	m.mu.Lock()
	entry, ok := m.refreshers[key]
	m.mu.Unlock()
	if !ok {
		return nil, ErrRefresherNotFound
	}
	return m.runOnce(ctx, entry.config)
}

func (m *RefreshManager) runOnce(ctx context.Context, config RefresherConfig) (any, error) {
	coordinate := func(ctx context.Context) (any, error) {
		// refresh results are never cached, only deduplicated and throttled
		return m.coord.coordinate(ctx, config.CacheType, "refresh-"+config.Key, config.Fn,
			WithNoResultCache(), WithDebounce(0))
	}

	if config.MaxAttempts < 2 {
		return coordinate(ctx)
	}

	interval := config.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	var value any
	retrier := retry.NewRetrier(config.MaxAttempts, interval, interval)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		result, err := coordinate(ctx)
		if err != nil {
			return err
		}
		value = result
		return nil
	})
	return value, err
}

// Enabled reports the global auto-refresh flag.
func (m *RefreshManager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// PauseAll disables auto-refresh globally and persists the flag.
func (m *RefreshManager) PauseAll() {
	m.setEnabled(false)
}

// ResumeAll enables auto-refresh globally and persists the flag.
func (m *RefreshManager) ResumeAll() {
	m.setEnabled(true)
}

func (m *RefreshManager) setEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()

	if err := m.flags.Store(autoRefreshFlagKey, strconv.FormatBool(enabled)); err != nil {
		m.logger.Warnf("failed to persist auto-refresh flag: %v", err)
	}
}
