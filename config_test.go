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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/reqcache/log"
)

func TestConfig(t *testing.T) {
	t.Run("With default values", func(t *testing.T) {
		config := NewConfig(testCacheTypes())
		require.NoError(t, config.Validate())

		assert.Equal(t, DefaultSweepInterval, config.SweepInterval())
		assert.Equal(t, DefaultDrainInterval, config.DrainInterval())
		assert.Equal(t, DefaultDebounce, config.CallDefaults().Debounce)
		assert.Equal(t, DefaultThrottle, config.CallDefaults().Throttle)
		assert.Equal(t, DefaultResultTTL, config.CallDefaults().CacheTTL)
		assert.EqualValues(t, DefaultMaxConcurrent, config.MaxConcurrent())
		assert.Equal(t, DefaultFastCacheCapacity, config.FastCacheCapacity())
		assert.NotNil(t, config.Logger())
		assert.NotNil(t, config.Activity())
		assert.NotNil(t, config.Flags())
		assert.Nil(t, config.AdminConfig())
		assert.Nil(t, config.RateLimit())
		assert.Nil(t, config.CircuitBreaker())
	})
	t.Run("With custom options", func(t *testing.T) {
		config := NewConfig(testCacheTypes(),
			WithLogger(log.DiscardLogger),
			WithSweepInterval(10*time.Second),
			WithDrainInterval(50*time.Millisecond),
			WithMaxConcurrent(8),
			WithMonitorCapacity(100),
		)
		require.NoError(t, config.Validate())

		assert.Equal(t, log.DiscardLogger, config.Logger())
		assert.Equal(t, 10*time.Second, config.SweepInterval())
		assert.Equal(t, 50*time.Millisecond, config.DrainInterval())
		assert.EqualValues(t, 8, config.MaxConcurrent())
		assert.Equal(t, 100, config.MonitorCapacity())
	})
	t.Run("With no cache types", func(t *testing.T) {
		config := NewConfig(nil)
		require.ErrorContains(t, config.Validate(), "cacheTypes are required")
	})
	t.Run("With an unnamed cache type", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{{TTL: time.Minute, MaxSize: 10}})
		require.ErrorContains(t, config.Validate(), "the [cacheType.Name] is required")
	})
	t.Run("With a duplicate cache type", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{
			{Name: "metrics", TTL: time.Minute, MaxSize: 10},
			{Name: "metrics", TTL: time.Minute, MaxSize: 10},
		})
		require.ErrorContains(t, config.Validate(), "duplicate cache type: metrics")
	})
	t.Run("With an invalid max size", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{{Name: "metrics", TTL: time.Minute}})
		require.ErrorContains(t, config.Validate(), "cacheType.MaxSize is invalid")
	})
	t.Run("With a missing TTL on a non permanent type", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{{Name: "metrics", MaxSize: 10}})
		require.ErrorContains(t, config.Validate(), "cacheType.TTL is invalid")
	})
	t.Run("With a permanent type needing no TTL", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{{Name: "status", MaxSize: 10, Permanent: true}})
		require.NoError(t, config.Validate())
	})
	t.Run("With an auto-activated type missing its thresholds", func(t *testing.T) {
		config := NewConfig([]CacheTypeConfig{
			{Name: "ranking", TTL: time.Minute, MaxSize: 10, AutoActivate: true},
		})
		require.ErrorContains(t, config.Validate(), "auto-activated cacheType needs a performance or usage threshold")
	})
	t.Run("With an invalid call default", func(t *testing.T) {
		config := NewConfig(testCacheTypes(), WithCallDefaults(CallConfig{Debounce: -time.Second}))
		require.ErrorContains(t, config.Validate(), "callDefaults.Debounce is invalid")
	})
	t.Run("With an invalid concurrency bound", func(t *testing.T) {
		config := NewConfig(testCacheTypes(), WithMaxConcurrent(0))
		require.ErrorContains(t, config.Validate(), "maxConcurrent is invalid")
	})
	t.Run("With an invalid rate limit", func(t *testing.T) {
		config := NewConfig(testCacheTypes(), WithRateLimit(&RateLimitConfig{RequestsPerSecond: -5}))
		require.ErrorContains(t, config.Validate(), "rateLimit.requestsPerSecond is invalid")
	})
}
