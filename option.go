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
	"time"

	"github.com/tochemey/reqcache/admin"
	"github.com/tochemey/reqcache/log"
	"github.com/tochemey/reqcache/otel"
)

// Option defines a configuration option that can be applied to a Config.
type Option interface {
	// Apply applies the configuration option to the given Config instance.
	Apply(config *Config)
}

// enforce compilation error if OptionFunc does not implement Option
var _ Option = OptionFunc(nil)

// OptionFunc is a function type that implements the Option interface.
type OptionFunc func(config *Config)

// Apply applies the OptionFunc to the given Config.
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// WithLogger sets a custom logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(
		func(config *Config) {
			config.logger = logger
		},
	)
}

// WithSweepInterval sets the period of the proactive expiry sweep.
func WithSweepInterval(interval time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.sweepInterval = interval
	})
}

// WithDrainInterval sets the period of the invalidation queue drain.
func WithDrainInterval(interval time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.drainInterval = interval
	})
}

// WithCallDefaults sets the default per-call knobs of coordinated requests.
func WithCallDefaults(defaults CallConfig) Option {
	return OptionFunc(func(config *Config) {
		config.callDefaults = defaults
	})
}

// WithMaxConcurrent caps the number of concurrently pending coordinated
// requests across all keys.
func WithMaxConcurrent(maxConcurrent int64) Option {
	return OptionFunc(func(config *Config) {
		config.maxConcurrent = maxConcurrent
	})
}

// WithFastCacheCapacity bounds the coordinator-level result cache.
func WithFastCacheCapacity(capacity int) Option {
	return OptionFunc(func(config *Config) {
		config.fastCacheCapacity = capacity
	})
}

// WithMonitorCapacity bounds the request monitor's ring buffer.
func WithMonitorCapacity(capacity int) Option {
	return OptionFunc(func(config *Config) {
		config.monitorCapacity = capacity
	})
}

// WithActivitySource sets the interaction source used for idle detection.
func WithActivitySource(activity ActivitySource) Option {
	return OptionFunc(func(config *Config) {
		config.activity = activity
	})
}

// WithFlagStore sets the store persisting the auto-refresh flag.
func WithFlagStore(flags FlagStore) Option {
	return OptionFunc(func(config *Config) {
		config.flags = flags
	})
}

// WithAdminConfig enables the diagnostic HTTP server.
func WithAdminConfig(adminConfig *admin.Config) Option {
	return OptionFunc(func(config *Config) {
		config.adminConfig = adminConfig
	})
}

// WithMetrics enables OpenTelemetry metrics.
func WithMetrics(metricsConfig *otel.MetricConfig) Option {
	return OptionFunc(func(config *Config) {
		config.metricConfig = metricsConfig
	})
}

// WithTracing enables OpenTelemetry tracing.
func WithTracing(traceConfig *otel.TracerConfig) Option {
	return OptionFunc(func(config *Config) {
		config.traceConfig = traceConfig
	})
}

// WithRateLimit bounds producer invocations engine-wide.
func WithRateLimit(rateLimit *RateLimitConfig) Option {
	return OptionFunc(func(config *Config) {
		config.rateLimit = rateLimit
	})
}

// WithCircuitBreaker protects producers with a consecutive-failure circuit
// breaker.
func WithCircuitBreaker(circuitBreaker *CircuitBreakerConfig) Option {
	return OptionFunc(func(config *Config) {
		config.circuitBreaker = circuitBreaker
	})
}
