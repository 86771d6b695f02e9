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

package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/reqcache/log"
)

type fakeProvider struct {
	slowestLimit   int
	endpointsLimit int
}

func (p *fakeProvider) SnapshotCacheTypes() []CacheTypeSnapshot {
	return []CacheTypeSnapshot{{Name: "metrics", MaxSize: 10, Active: true}}
}

func (p *fakeProvider) SnapshotRequests() any {
	return map[string]int{"total": 3}
}

func (p *fakeProvider) SnapshotSlowest(limit int) any {
	p.slowestLimit = limit
	return []string{}
}

func (p *fakeProvider) SnapshotEndpoints(limit int) any {
	p.endpointsLimit = limit
	return []string{}
}

func startTestServer(t *testing.T, provider SnapshotProvider) *Server {
	t.Helper()

	srv := NewServer(Config{ListenAddr: "127.0.0.1:0"}, provider, log.DiscardLogger)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func TestServer(t *testing.T) {
	t.Run("With the cache types endpoint", func(t *testing.T) {
		srv := startTestServer(t, new(fakeProvider))

		resp, err := http.Get(fmt.Sprintf("http://%s%s/cachetypes", srv.Addr(), defaultAdminBasePath))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var snapshots []CacheTypeSnapshot
		require.NoError(t, json.Unmarshal(body, &snapshots))
		require.Len(t, snapshots, 1)
		assert.Equal(t, "metrics", snapshots[0].Name)
	})
	t.Run("With a limit query parameter", func(t *testing.T) {
		provider := new(fakeProvider)
		srv := startTestServer(t, provider)

		resp, err := http.Get(fmt.Sprintf("http://%s%s/slowest?limit=3", srv.Addr(), defaultAdminBasePath))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, provider.slowestLimit)
	})
	t.Run("With an invalid limit falling back to the default", func(t *testing.T) {
		provider := new(fakeProvider)
		srv := startTestServer(t, provider)

		resp, err := http.Get(fmt.Sprintf("http://%s%s/endpoints?limit=bogus", srv.Addr(), defaultAdminBasePath))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 10, provider.endpointsLimit)
	})
	t.Run("With non GET methods rejected", func(t *testing.T) {
		srv := startTestServer(t, new(fakeProvider))

		resp, err := http.Post(fmt.Sprintf("http://%s%s/requests", srv.Addr(), defaultAdminBasePath), "application/json", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
	t.Run("With no listen address configured", func(t *testing.T) {
		srv := NewServer(Config{}, new(fakeProvider), log.DiscardLogger)
		require.NoError(t, srv.Start(context.Background()))
		require.Empty(t, srv.Addr())
		require.NoError(t, srv.Shutdown(context.Background()))
	})
	t.Run("With a missing provider", func(t *testing.T) {
		srv := NewServer(Config{ListenAddr: "127.0.0.1:0"}, nil, log.DiscardLogger)
		require.Error(t, srv.Start(context.Background()))
	})
}
