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

import "github.com/tochemey/reqcache/admin"

func newAdminProvider(eng *engine) admin.SnapshotProvider {
	return &adminProvider{engine: eng}
}

type adminProvider struct {
	engine *engine
}

func (x *adminProvider) SnapshotCacheTypes() []admin.CacheTypeSnapshot {
	if x.engine == nil {
		return nil
	}
	return x.engine.snapshotCacheTypes()
}

func (x *adminProvider) SnapshotRequests() any {
	if x.engine == nil {
		return nil
	}
	return x.engine.monitor.Stats()
}

func (x *adminProvider) SnapshotSlowest(limit int) any {
	if x.engine == nil {
		return nil
	}
	return x.engine.monitor.SlowestRequests(limit)
}

func (x *adminProvider) SnapshotEndpoints(limit int) any {
	if x.engine == nil {
		return nil
	}
	return x.engine.monitor.TopEndpoints(limit)
}

func (e *engine) snapshotCacheTypes() []admin.CacheTypeSnapshot {
	configs := e.config.CacheTypes()
	snapshots := make([]admin.CacheTypeSnapshot, 0, len(configs))
	for _, config := range configs {
		stats, ok := e.store.Stats(config.Name)
		if !ok {
			continue
		}
		snapshots = append(snapshots, admin.CacheTypeSnapshot{
			Name:          config.Name,
			TTL:           config.TTL,
			MaxSize:       config.MaxSize,
			Permanent:     config.Permanent,
			AutoActivate:  config.AutoActivate,
			Active:        stats.Active,
			Hits:          stats.Hits,
			Misses:        stats.Misses,
			Sets:          stats.Sets,
			Deletes:       stats.Deletes,
			Clears:        stats.Clears,
			Size:          stats.Size,
			HitRate:       stats.HitRate,
			MemoryBytes:   stats.MemoryBytes,
			RecentSamples: e.policy.Samples(config.Name),
		})
	}
	return snapshots
}
