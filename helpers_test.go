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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/reqcache/log"
)

// testCacheTypes returns a small set of partitions covering the activation
// modes.
func testCacheTypes() []CacheTypeConfig {
	return []CacheTypeConfig{
		{
			Name:    "metrics",
			TTL:     5 * time.Second,
			MaxSize: 2,
		},
		{
			Name:                 "ranking",
			TTL:                  time.Minute,
			MaxSize:              10,
			AutoActivate:         true,
			PerformanceThreshold: 100 * time.Millisecond,
			UsageThreshold:       3,
		},
		{
			Name:      "status",
			MaxSize:   5,
			Permanent: true,
		},
		{
			Name:    "refresh",
			TTL:     time.Minute,
			MaxSize: 10,
		},
	}
}

// fastCallDefaults removes the debounce/throttle delays so tests run quickly.
func fastCallDefaults() CallConfig {
	return CallConfig{
		Debounce: 0,
		Throttle: 0,
		CacheTTL: 30 * time.Second,
	}
}

func newTestEngine(t *testing.T, opts ...Option) *engine {
	t.Helper()

	base := []Option{
		WithLogger(log.DiscardLogger),
		WithCallDefaults(fastCallDefaults()),
	}
	config := NewConfig(testCacheTypes(), append(base, opts...)...)

	engAny, err := NewEngine(config)
	require.NoError(t, err)
	return engAny.(*engine)
}

// countingProducer returns a producer that counts its invocations and
// resolves after delay.
func countingProducer(delay time.Duration, value any) (*atomic.Int32, Producer) {
	calls := new(atomic.Int32)
	return calls, func(ctx context.Context) (any, error) {
		calls.Add(1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		return value, nil
	}
}

// recordingStore records InvalidatePattern calls for invalidation tests.
type recordingStore struct {
	Store
	mu    sync.Mutex
	calls []string
}

func newRecordingStore(inner Store) *recordingStore {
	return &recordingStore{Store: inner}
}

func (s *recordingStore) InvalidatePattern(cacheType string, pattern *regexp.Regexp) int {
	s.mu.Lock()
	s.calls = append(s.calls, cacheType)
	s.mu.Unlock()
	return s.Store.InvalidatePattern(cacheType, pattern)
}

func (s *recordingStore) invalidations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]string, len(s.calls))
	copy(calls, s.calls)
	return calls
}
