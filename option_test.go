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

	"github.com/tochemey/reqcache/admin"
	"github.com/tochemey/reqcache/log"
	"github.com/tochemey/reqcache/otel"
)

func TestOptions(t *testing.T) {
	activity := NewActivityRecorder()
	flags := NewMemoryFlagStore()
	adminConfig := &admin.Config{ListenAddr: "127.0.0.1:0"}
	metricConfig := otel.NewMetricConfig()
	traceConfig := otel.NewTracerConfig()
	rateLimit := &RateLimitConfig{RequestsPerSecond: 10}
	circuitBreaker := &CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute}

	testCases := []struct {
		name     string
		option   Option
		expected Config
	}{
		{
			name:     "WithLogger",
			option:   WithLogger(log.DiscardLogger),
			expected: Config{logger: log.DiscardLogger},
		},
		{
			name:     "WithSweepInterval",
			option:   WithSweepInterval(10 * time.Second),
			expected: Config{sweepInterval: 10 * time.Second},
		},
		{
			name:     "WithDrainInterval",
			option:   WithDrainInterval(time.Second),
			expected: Config{drainInterval: time.Second},
		},
		{
			name:     "WithCallDefaults",
			option:   WithCallDefaults(CallConfig{Debounce: time.Second}),
			expected: Config{callDefaults: CallConfig{Debounce: time.Second}},
		},
		{
			name:     "WithMaxConcurrent",
			option:   WithMaxConcurrent(16),
			expected: Config{maxConcurrent: 16},
		},
		{
			name:     "WithFastCacheCapacity",
			option:   WithFastCacheCapacity(64),
			expected: Config{fastCacheCapacity: 64},
		},
		{
			name:     "WithMonitorCapacity",
			option:   WithMonitorCapacity(100),
			expected: Config{monitorCapacity: 100},
		},
		{
			name:     "WithActivitySource",
			option:   WithActivitySource(activity),
			expected: Config{activity: activity},
		},
		{
			name:     "WithFlagStore",
			option:   WithFlagStore(flags),
			expected: Config{flags: flags},
		},
		{
			name:     "WithAdminConfig",
			option:   WithAdminConfig(adminConfig),
			expected: Config{adminConfig: adminConfig},
		},
		{
			name:     "WithMetrics",
			option:   WithMetrics(metricConfig),
			expected: Config{metricConfig: metricConfig},
		},
		{
			name:     "WithTracing",
			option:   WithTracing(traceConfig),
			expected: Config{traceConfig: traceConfig},
		},
		{
			name:     "WithRateLimit",
			option:   WithRateLimit(rateLimit),
			expected: Config{rateLimit: rateLimit},
		},
		{
			name:     "WithCircuitBreaker",
			option:   WithCircuitBreaker(circuitBreaker),
			expected: Config{circuitBreaker: circuitBreaker},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := Config{}
			testCase.option.Apply(&config)
			assert.Equal(t, testCase.expected, config)
		})
	}
}
