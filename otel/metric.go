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

package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MetricConfig carries the MeterProvider used to create reqcache instruments.
type MetricConfig struct {
	provider metric.MeterProvider
}

// MetricOption configures a MetricConfig.
type MetricOption func(*MetricConfig)

// WithMeterProvider sets the MeterProvider to use when obtaining a meter.
// When not provided, NewMetricConfig defaults to otel.GetMeterProvider().
func WithMeterProvider(provider metric.MeterProvider) MetricOption {
	return func(cfg *MetricConfig) {
		cfg.provider = provider
	}
}

// NewMetricConfig builds a MetricConfig using the supplied options.
func NewMetricConfig(opts ...MetricOption) *MetricConfig {
	cfg := &MetricConfig{
		provider: otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Provider returns the configured MeterProvider.
func (c MetricConfig) Provider() metric.MeterProvider {
	return c.provider
}
