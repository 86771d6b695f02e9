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
	"os"
	"time"

	"github.com/tochemey/reqcache/admin"
	"github.com/tochemey/reqcache/internal/validation"
	"github.com/tochemey/reqcache/log"
	"github.com/tochemey/reqcache/otel"
)

const (
	// DefaultSweepInterval is the period of the proactive expiry sweep.
	DefaultSweepInterval = time.Minute

	// DefaultDrainInterval is the period of the invalidation queue drain.
	DefaultDrainInterval = 100 * time.Millisecond

	// DefaultDebounce is the default debounce window of a coordinated
	// request.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultThrottle is the default minimum spacing between producer
	// invocations for the same key.
	DefaultThrottle = time.Second

	// DefaultMaxConcurrent is the default cap on concurrently pending
	// coordinated requests across all keys.
	DefaultMaxConcurrent = 3

	// DefaultResultTTL is the default freshness window of the coordinator
	// result cache.
	DefaultResultTTL = 30 * time.Second

	// DefaultFastCacheCapacity bounds the coordinator result cache.
	DefaultFastCacheCapacity = 512
)

// Config defines the reqcache engine configuration.
type Config struct {
	// cacheTypes are the registered cache partitions.
	cacheTypes []CacheTypeConfig

	// logger receives the engine's diagnostics.
	logger log.Logger

	// sweepInterval is the period of the proactive expiry sweep across all
	// cache types.
	sweepInterval time.Duration

	// drainInterval is the period of the invalidation queue drain.
	drainInterval time.Duration

	// callDefaults are the per-call knobs applied when a coordinated request
	// does not override them.
	callDefaults CallConfig

	// maxConcurrent caps the number of concurrently pending coordinated
	// requests across all keys.
	maxConcurrent int64

	// fastCacheCapacity bounds the coordinator-level result cache.
	fastCacheCapacity int

	// monitorCapacity bounds the request monitor's ring buffer.
	monitorCapacity int

	// activity supplies user-interaction timestamps for idle detection.
	activity ActivitySource

	// flags persists the auto-refresh flag across reloads.
	flags FlagStore

	// adminConfig enables the diagnostic HTTP server when non-nil.
	adminConfig *admin.Config

	// metricConfig enables OpenTelemetry metrics when non-nil.
	metricConfig *otel.MetricConfig

	// traceConfig enables OpenTelemetry tracing when non-nil.
	traceConfig *otel.TracerConfig

	// rateLimit bounds producer invocations when non-nil.
	rateLimit *RateLimitConfig

	// circuitBreaker protects producers when non-nil.
	circuitBreaker *CircuitBreakerConfig
}

// enforce compilation error
var _ validation.Validator = (*Config)(nil)

// NewConfig creates a configuration for the reqcache engine.
//
// cacheTypes defines the logical cache partitions; opts customize the engine
// behavior on top of the defaults.
func NewConfig(cacheTypes []CacheTypeConfig, opts ...Option) *Config {
	config := &Config{
		cacheTypes:    cacheTypes,
		logger:        log.New(log.InfoLevel, os.Stdout),
		sweepInterval: DefaultSweepInterval,
		drainInterval: DefaultDrainInterval,
		callDefaults: CallConfig{
			Debounce: DefaultDebounce,
			Throttle: DefaultThrottle,
			CacheTTL: DefaultResultTTL,
		},
		maxConcurrent:     DefaultMaxConcurrent,
		fastCacheCapacity: DefaultFastCacheCapacity,
		monitorCapacity:   defaultMonitorCapacity,
		activity:          NewActivityRecorder(),
		flags:             NewMemoryFlagStore(),
	}

	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// CacheTypes returns the registered cache partitions.
func (c Config) CacheTypes() []CacheTypeConfig {
	return c.cacheTypes
}

// Logger returns the configured logger.
func (c Config) Logger() log.Logger {
	return c.logger
}

// SweepInterval returns the period of the proactive expiry sweep.
func (c Config) SweepInterval() time.Duration {
	return c.sweepInterval
}

// DrainInterval returns the period of the invalidation queue drain.
func (c Config) DrainInterval() time.Duration {
	return c.drainInterval
}

// CallDefaults returns the default per-call knobs of coordinated requests.
func (c Config) CallDefaults() CallConfig {
	return c.callDefaults
}

// MaxConcurrent returns the cap on concurrently pending coordinated requests.
func (c Config) MaxConcurrent() int64 {
	return c.maxConcurrent
}

// FastCacheCapacity returns the bound of the coordinator result cache.
func (c Config) FastCacheCapacity() int {
	return c.fastCacheCapacity
}

// MonitorCapacity returns the bound of the request monitor ring buffer.
func (c Config) MonitorCapacity() int {
	return c.monitorCapacity
}

// Activity returns the configured interaction source for idle detection.
func (c Config) Activity() ActivitySource {
	return c.activity
}

// Flags returns the configured flag store.
func (c Config) Flags() FlagStore {
	return c.flags
}

// AdminConfig returns the diagnostic server configuration, nil when disabled.
func (c Config) AdminConfig() *admin.Config {
	return c.adminConfig
}

// MetricConfig returns the OpenTelemetry metric configuration, nil when
// disabled.
func (c Config) MetricConfig() *otel.MetricConfig {
	return c.metricConfig
}

// TraceConfig returns the OpenTelemetry trace configuration, nil when
// disabled.
func (c Config) TraceConfig() *otel.TracerConfig {
	return c.traceConfig
}

// RateLimit returns the producer rate limit policy, nil when disabled.
func (c Config) RateLimit() *RateLimitConfig {
	return c.rateLimit
}

// CircuitBreaker returns the producer circuit breaker policy, nil when
// disabled.
func (c Config) CircuitBreaker() *CircuitBreakerConfig {
	return c.circuitBreaker
}

// Validate validates the reqcache configuration.
func (c Config) Validate() error {
	chain := validation.
		New(validation.FailFast()).
		AddAssertion(len(c.cacheTypes) > 0, "cacheTypes are required").
		AddAssertion(c.logger != nil, "logger is required").
		AddAssertion(c.sweepInterval > 0, "sweepInterval is invalid").
		AddAssertion(c.drainInterval > 0, "drainInterval is invalid").
		AddAssertion(c.callDefaults.Debounce >= 0, "callDefaults.Debounce is invalid").
		AddAssertion(c.callDefaults.Throttle >= 0, "callDefaults.Throttle is invalid").
		AddAssertion(c.callDefaults.CacheTTL >= 0, "callDefaults.CacheTTL is invalid").
		AddAssertion(c.maxConcurrent > 0, "maxConcurrent is invalid").
		AddAssertion(c.fastCacheCapacity > 0, "fastCacheCapacity is invalid").
		AddAssertion(c.monitorCapacity > 0, "monitorCapacity is invalid").
		AddAssertion(c.activity != nil, "activity source is required").
		AddAssertion(c.flags != nil, "flag store is required")

	seen := make(map[string]bool, len(c.cacheTypes))
	for _, cacheType := range c.cacheTypes {
		chain = chain.
			AddValidator(validation.NewEmptyStringValidator(cacheType.Name, "cacheType.Name")).
			AddAssertion(!seen[cacheType.Name], "duplicate cache type: "+cacheType.Name).
			AddAssertion(cacheType.MaxSize >= 1, "cacheType.MaxSize is invalid").
			AddValidator(validation.NewConditionalValidator(!cacheType.Permanent,
				validation.NewBooleanValidator(cacheType.TTL > 0, "cacheType.TTL is invalid"))).
			AddValidator(validation.NewConditionalValidator(cacheType.AutoActivate,
				validation.NewBooleanValidator(cacheType.PerformanceThreshold > 0 || cacheType.UsageThreshold > 0,
					"auto-activated cacheType needs a performance or usage threshold")))
		seen[cacheType.Name] = true
	}

	if err := validateGuardConfig(c.rateLimit, c.circuitBreaker); err != nil {
		return err
	}
	return chain.Validate()
}
