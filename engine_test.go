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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/reqcache/admin"
	"github.com/tochemey/reqcache/log"
)

func TestEngineLifecycle(t *testing.T) {
	t.Run("With start and stop", func(t *testing.T) {
		eng := newTestEngine(t)
		ctx := context.Background()

		require.NoError(t, eng.Start(ctx))
		// a second start is a no-op
		require.NoError(t, eng.Start(ctx))

		require.NoError(t, eng.Stop(ctx))
		require.NoError(t, eng.Stop(ctx))
	})
	t.Run("With coordination rejected after stop", func(t *testing.T) {
		eng := newTestEngine(t)
		ctx := context.Background()
		require.NoError(t, eng.Start(ctx))
		require.NoError(t, eng.Stop(ctx))

		_, producer := countingProducer(0, "payload")
		_, err := eng.Coordinate(ctx, "metrics", "dashboard", producer)
		require.ErrorIs(t, err, ErrEngineStopped)
	})
	t.Run("With an invalid configuration", func(t *testing.T) {
		config := NewConfig(nil, WithLogger(log.DiscardLogger))
		eng, err := NewEngine(config)
		require.Error(t, err)
		require.Nil(t, eng)
	})
}

func TestEngineSweep(t *testing.T) {
	config := NewConfig([]CacheTypeConfig{
		{Name: "metrics", TTL: 30 * time.Millisecond, MaxSize: 10},
	},
		WithLogger(log.DiscardLogger),
		WithSweepInterval(20*time.Millisecond),
		WithCallDefaults(fastCallDefaults()),
	)
	engAny, err := NewEngine(config)
	require.NoError(t, err)
	eng := engAny.(*engine)

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))
	defer eng.Stop(ctx) //nolint

	require.True(t, eng.Cache().SetKey("metrics", "k1", 1))

	require.Eventually(t, func() bool {
		stats, ok := eng.Cache().Stats("metrics")
		return ok && stats.Size == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEngineInvalidationDrain(t *testing.T) {
	eng := newTestEngine(t, WithDrainInterval(20*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))
	defer eng.Stop(ctx) //nolint

	require.True(t, eng.Cache().SetKey("metrics", "tickets-open", 1))
	eng.Invalidation().AddRule(InvalidationRule{
		EventType:  "ticket.updated",
		Pattern:    regexp.MustCompile(`^tickets-`),
		CacheTypes: []string{"metrics"},
		Priority:   PriorityHigh,
	})
	eng.Invalidation().Trigger("ticket.updated", nil, "test")

	require.Eventually(t, func() bool {
		_, ok := eng.Cache().GetKey("metrics", "tickets-open")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestEngineForceDeactivate(t *testing.T) {
	t.Run("With an activated type demoted and cleared", func(t *testing.T) {
		eng := newTestEngine(t)
		for i := 0; i < 3; i++ {
			eng.policy.RecordCall("ranking")
		}
		require.True(t, eng.policy.Active("ranking"))
		require.True(t, eng.Cache().SetKey("ranking", "k1", 1))

		removed, err := eng.ForceDeactivate("ranking")
		require.NoError(t, err)
		require.Equal(t, 1, removed)
		require.False(t, eng.policy.Active("ranking"))
		require.False(t, eng.Cache().SetKey("ranking", "k1", 1))
	})
	t.Run("With coordinator results dropped alongside the store", func(t *testing.T) {
		eng := newTestEngine(t)
		ctx := context.Background()
		calls, producer := countingProducer(0, "payload")

		_, err := eng.Coordinate(ctx, "metrics", "dashboard", producer)
		require.NoError(t, err)
		require.EqualValues(t, 1, calls.Load())

		_, err = eng.ForceDeactivate("metrics")
		require.NoError(t, err)

		_, err = eng.Coordinate(ctx, "metrics", "dashboard", producer)
		require.NoError(t, err)
		require.EqualValues(t, 2, calls.Load())
	})
	t.Run("With an unknown cache type", func(t *testing.T) {
		eng := newTestEngine(t)
		_, err := eng.ForceDeactivate("unknown")
		require.ErrorIs(t, err, ErrCacheTypeNotFound)
	})
}

func TestEngineAdminEndpoints(t *testing.T) {
	eng := newTestEngine(t, WithAdminConfig(&admin.Config{ListenAddr: "127.0.0.1:0"}))
	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))
	defer eng.Stop(ctx) //nolint

	_, producer := countingProducer(0, "payload")
	_, err := eng.Coordinate(ctx, "metrics", "dashboard", producer)
	require.NoError(t, err)

	base := fmt.Sprintf("http://%s/_reqcache/admin", eng.adminSrv.Addr())

	t.Run("With the cache types snapshot", func(t *testing.T) {
		resp, err := http.Get(base + "/cachetypes")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var snapshots []admin.CacheTypeSnapshot
		require.NoError(t, json.Unmarshal(body, &snapshots))
		require.Len(t, snapshots, len(testCacheTypes()))
	})
	t.Run("With the requests snapshot", func(t *testing.T) {
		resp, err := http.Get(base + "/requests")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var stats MonitorStats
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, 1, stats.Total)
	})
	t.Run("With the slowest requests snapshot", func(t *testing.T) {
		resp, err := http.Get(base + "/slowest?limit=1")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
	t.Run("With the endpoints snapshot", func(t *testing.T) {
		resp, err := http.Get(base + "/endpoints")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
