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
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// methodGet is the method recorded for coordinated fetches.
const methodGet = "GET"

// defaultMonitorCapacity is the ring buffer bound of the request monitor.
const defaultMonitorCapacity = 2000

// defaultTopEndpoints bounds the per-endpoint breakdown of aggregate stats.
const defaultTopEndpoints = 5

// Outcome is the settlement state of a monitored request.
type Outcome string

const (
	// OutcomePending marks a request that has not settled yet.
	OutcomePending Outcome = "pending"
	// OutcomeSuccess marks a request that settled successfully.
	OutcomeSuccess Outcome = "success"
	// OutcomeError marks a request that settled with an error.
	OutcomeError Outcome = "error"
	// OutcomeCacheHit marks a request served from cache without a network
	// call.
	OutcomeCacheHit Outcome = "cache_hit"
)

// RequestMetric is the telemetry record of one coordinated request.
type RequestMetric struct {
	ID           string        `json:"id"`
	Endpoint     string        `json:"endpoint"`
	Method       string        `json:"method"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at,omitzero"`
	Duration     time.Duration `json:"duration"`
	Outcome      Outcome       `json:"outcome"`
	ResponseSize int           `json:"response_size,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// EndpointStats aggregates the monitored requests of one endpoint.
type EndpointStats struct {
	Endpoint     string        `json:"endpoint"`
	Count        int           `json:"count"`
	MeanDuration time.Duration `json:"mean_duration"`
	ErrorRate    float64       `json:"error_rate"`
}

// MonitorStats is the aggregate view over the monitor's ring buffer.
type MonitorStats struct {
	Total             int             `json:"total"`
	Succeeded         int             `json:"succeeded"`
	Failed            int             `json:"failed"`
	CacheHits         int             `json:"cache_hits"`
	Pending           int             `json:"pending"`
	MeanDuration      time.Duration   `json:"mean_duration"`
	RequestsPerMinute float64         `json:"requests_per_minute"`
	ErrorRate         float64         `json:"error_rate"`
	CacheHitRate      float64         `json:"cache_hit_rate"`
	TopEndpoints      []EndpointStats `json:"top_endpoints"`
}

// TimelineBucket counts the requests of one one-minute slot.
type TimelineBucket struct {
	Minute       time.Time     `json:"minute"`
	Count        int           `json:"count"`
	Errors       int           `json:"errors"`
	MeanDuration time.Duration `json:"mean_duration"`
}

// ErrorGroup counts occurrences of one (endpoint, message) error pair.
type ErrorGroup struct {
	Endpoint string `json:"endpoint"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
}

// DetailedMonitorStats extends MonitorStats with a per-minute timeline and
// grouped errors over a trailing period.
type DetailedMonitorStats struct {
	MonitorStats
	Period      time.Duration    `json:"period"`
	Timeline    []TimelineBucket `json:"timeline"`
	ErrorGroups []ErrorGroup     `json:"error_groups"`
}

// Monitor is the telemetry ledger of every coordinated request. It owns a
// bounded ring buffer of RequestMetric records; nothing else mutates them.
type Monitor struct {
	mu       sync.Mutex
	capacity int
	metrics  []*RequestMetric
	index    map[string]*RequestMetric
}

// NewMonitor creates a Monitor retaining at most capacity records, dropping
// the oldest beyond the bound. A non-positive capacity uses the default.
func NewMonitor(capacity int) *Monitor {
	if capacity <= 0 {
		capacity = defaultMonitorCapacity
	}
	return &Monitor{
		capacity: capacity,
		index:    make(map[string]*RequestMetric),
	}
}

// StartRequest records the start of a request and returns its metric ID.
func (m *Monitor) StartRequest(endpoint string, method string, params Params) string {
	metric := &RequestMetric{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		Method:    method,
		StartedAt: time.Now(),
		Outcome:   OutcomePending,
	}
	if len(params) > 0 {
		metric.Endpoint = endpoint + "?" + Key(params)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = append(m.metrics, metric)
	m.index[metric.ID] = metric
	for len(m.metrics) > m.capacity {
		oldest := m.metrics[0]
		m.metrics = m.metrics[1:]
		delete(m.index, oldest.ID)
	}
	return metric.ID
}

// EndRequest finalizes a request as successful, or as a cache hit when
// cacheHit is true. Unknown IDs are ignored; the record may have been evicted
// from the ring buffer.
func (m *Monitor) EndRequest(id string, responseSize int, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metric, ok := m.index[id]
	if !ok {
		return
	}

	metric.EndedAt = time.Now()
	metric.Duration = metric.EndedAt.Sub(metric.StartedAt)
	metric.ResponseSize = responseSize
	metric.Outcome = OutcomeSuccess
	if cacheHit {
		metric.Outcome = OutcomeCacheHit
	}
}

// ErrorRequest finalizes a request as failed with the given message.
func (m *Monitor) ErrorRequest(id string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metric, ok := m.index[id]
	if !ok {
		return
	}

	metric.EndedAt = time.Now()
	metric.Duration = metric.EndedAt.Sub(metric.StartedAt)
	metric.Outcome = OutcomeError
	metric.ErrorMessage = message
}

// Stats returns the aggregate statistics over the retained records.
func (m *Monitor) Stats() MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked(defaultTopEndpoints)
}

func (m *Monitor) statsLocked(topN int) MonitorStats {
	stats := MonitorStats{Total: len(m.metrics)}

	var settled int
	var totalDuration time.Duration
	var recent int
	cutoff := time.Now().Add(-5 * time.Minute)
	byEndpoint := make(map[string]*EndpointStats)
	settledByEndpoint := make(map[string]int)
	errorsByEndpoint := make(map[string]int)

	for _, metric := range m.metrics {
		switch metric.Outcome {
		case OutcomeSuccess:
			stats.Succeeded++
		case OutcomeError:
			stats.Failed++
		case OutcomeCacheHit:
			stats.CacheHits++
		case OutcomePending:
			stats.Pending++
		}

		if metric.Outcome != OutcomePending {
			settled++
			totalDuration += metric.Duration
		}

		if metric.StartedAt.After(cutoff) {
			recent++
		}

		endpoint, ok := byEndpoint[metric.Endpoint]
		if !ok {
			endpoint = &EndpointStats{Endpoint: metric.Endpoint}
			byEndpoint[metric.Endpoint] = endpoint
		}
		endpoint.Count++
		// Only producer-backed settlements carry a meaningful duration;
		// pendings and cache hits would drag the mean toward zero.
		if metric.Outcome == OutcomeSuccess || metric.Outcome == OutcomeError {
			endpoint.MeanDuration += metric.Duration
			settledByEndpoint[metric.Endpoint]++
		}
		if metric.Outcome == OutcomeError {
			errorsByEndpoint[metric.Endpoint]++
		}
	}

	if settled > 0 {
		stats.MeanDuration = totalDuration / time.Duration(settled)
		stats.ErrorRate = float64(stats.Failed) / float64(settled)
		stats.CacheHitRate = float64(stats.CacheHits) / float64(settled)
	}
	stats.RequestsPerMinute = float64(recent) / 5

	for _, endpoint := range byEndpoint {
		if fetched := settledByEndpoint[endpoint.Endpoint]; fetched > 0 {
			endpoint.MeanDuration /= time.Duration(fetched)
		}
		if endpoint.Count > 0 {
			endpoint.ErrorRate = float64(errorsByEndpoint[endpoint.Endpoint]) / float64(endpoint.Count)
		}
		stats.TopEndpoints = append(stats.TopEndpoints, *endpoint)
	}
	sort.Slice(stats.TopEndpoints, func(i, j int) bool {
		if stats.TopEndpoints[i].Count == stats.TopEndpoints[j].Count {
			return stats.TopEndpoints[i].Endpoint < stats.TopEndpoints[j].Endpoint
		}
		return stats.TopEndpoints[i].Count > stats.TopEndpoints[j].Count
	})
	if len(stats.TopEndpoints) > topN {
		stats.TopEndpoints = stats.TopEndpoints[:topN]
	}
	return stats
}

// DetailedStats returns Stats plus a one-minute timeline and grouped errors
// over the trailing period.
func (m *Monitor) DetailedStats(period time.Duration) DetailedMonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	detailed := DetailedMonitorStats{
		MonitorStats: m.statsLocked(defaultTopEndpoints),
		Period:       period,
	}

	cutoff := time.Now().Add(-period)
	buckets := make(map[time.Time]*TimelineBucket)
	groups := make(map[[2]string]int)

	for _, metric := range m.metrics {
		if metric.StartedAt.Before(cutoff) {
			continue
		}

		minute := metric.StartedAt.Truncate(time.Minute)
		bucket, ok := buckets[minute]
		if !ok {
			bucket = &TimelineBucket{Minute: minute}
			buckets[minute] = bucket
		}
		bucket.Count++
		bucket.MeanDuration += metric.Duration
		if metric.Outcome == OutcomeError {
			bucket.Errors++
			groups[[2]string{metric.Endpoint, metric.ErrorMessage}]++
		}
	}

	for _, bucket := range buckets {
		if bucket.Count > 0 {
			bucket.MeanDuration /= time.Duration(bucket.Count)
		}
		detailed.Timeline = append(detailed.Timeline, *bucket)
	}
	sort.Slice(detailed.Timeline, func(i, j int) bool {
		return detailed.Timeline[i].Minute.Before(detailed.Timeline[j].Minute)
	})

	for pair, count := range groups {
		detailed.ErrorGroups = append(detailed.ErrorGroups, ErrorGroup{
			Endpoint: pair[0],
			Message:  pair[1],
			Count:    count,
		})
	}
	sort.Slice(detailed.ErrorGroups, func(i, j int) bool {
		if detailed.ErrorGroups[i].Count == detailed.ErrorGroups[j].Count {
			return detailed.ErrorGroups[i].Endpoint < detailed.ErrorGroups[j].Endpoint
		}
		return detailed.ErrorGroups[i].Count > detailed.ErrorGroups[j].Count
	})
	return detailed
}

// SlowestRequests returns the slowest settled requests, longest first.
func (m *Monitor) SlowestRequests(limit int) []RequestMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	settled := make([]RequestMetric, 0, len(m.metrics))
	for _, metric := range m.metrics {
		if metric.Outcome == OutcomePending {
			continue
		}
		settled = append(settled, *metric)
	}
	sort.Slice(settled, func(i, j int) bool {
		return settled[i].Duration > settled[j].Duration
	})
	if limit > 0 && len(settled) > limit {
		settled = settled[:limit]
	}
	return settled
}

// TopEndpoints returns the endpoints with the most recorded requests.
func (m *Monitor) TopEndpoints(limit int) []EndpointStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = defaultTopEndpoints
	}
	return m.statsLocked(limit).TopEndpoints
}

// Export serializes every retained record to JSON.
func (m *Monitor) Export() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]RequestMetric, 0, len(m.metrics))
	for _, metric := range m.metrics {
		records = append(records, *metric)
	}
	return json.Marshal(records)
}

// Clear drops every retained record.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = nil
	m.index = make(map[string]*RequestMetric)
}
