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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerConfig holds tracing settings applied to reqcache spans.
// It is treated as immutable after construction.
type TracerConfig struct {
	// provider is the TracerProvider used when obtaining a tracer. If not set
	// via options, NewTracerConfig defaults to otel.GetTracerProvider().
	provider trace.TracerProvider

	// attributes are static attributes attached to every span created with
	// this configuration.
	attributes []attribute.KeyValue
}

// TracerOption is a functional option that mutates a TracerConfig.
type TracerOption func(*TracerConfig)

// WithTracerProvider sets the tracer provider in the configuration.
//
// Note: Passing a nil provider will overwrite the default with nil.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(cfg *TracerConfig) {
		cfg.provider = provider
	}
}

// WithAttributes appends the given static attributes to the configuration.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(cfg *TracerConfig) {
		cfg.attributes = append(cfg.attributes, attrs...)
	}
}

// NewTracerConfig constructs a TracerConfig by applying the provided options
// on top of defaults. Options are applied in order; later options may
// overwrite earlier ones.
func NewTracerConfig(opts ...TracerOption) *TracerConfig {
	cfg := &TracerConfig{
		provider: otel.GetTracerProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// TracerProvider returns the configured trace.TracerProvider.
func (c *TracerConfig) TracerProvider() trace.TracerProvider {
	return c.provider
}

// Attributes returns the static attributes configured for this tracer config.
func (c *TracerConfig) Attributes() []attribute.KeyValue {
	return c.attributes
}
