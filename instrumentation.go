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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tochemey/reqcache/coordinator"

type instrumentation struct {
	tracer     trace.Tracer
	traceAttrs []attribute.KeyValue

	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstrumentation(cfg *Config) *instrumentation {
	inst := &instrumentation{}

	if cfg.TraceConfig() != nil && cfg.TraceConfig().TracerProvider() != nil {
		inst.tracer = cfg.TraceConfig().TracerProvider().Tracer(instrumentationName)
		inst.traceAttrs = append(inst.traceAttrs, cfg.TraceConfig().Attributes()...)
	}

	if cfg.MetricConfig() == nil {
		return inst
	}

	meter := cfg.MetricConfig().Provider().Meter(instrumentationName)
	inst.requests, _ = meter.Int64Counter(
		"reqcache.coordinator.requests",
		metric.WithDescription("Total number of coordinated requests"),
	)
	inst.errors, _ = meter.Int64Counter(
		"reqcache.coordinator.errors",
		metric.WithDescription("Total number of failed coordinated requests"),
	)
	inst.duration, _ = meter.Float64Histogram(
		"reqcache.coordinator.duration.ms",
		metric.WithDescription("Coordinated request latency in milliseconds"),
	)

	return inst
}

func (i *instrumentation) start(ctx context.Context, op string, cacheType string) (context.Context, func(error)) {
	if i == nil {
		return ctx, func(error) {}
	}

	start := time.Now()
	ctx, span := i.startSpan(ctx, op, cacheType)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		i.recordMetrics(ctx, op, cacheType, start, err)
	}
}

func (i *instrumentation) startSpan(ctx context.Context, op string, cacheType string) (context.Context, trace.Span) {
	if i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	attrs := []attribute.KeyValue{
		attribute.String("reqcache.operation", op),
	}
	if cacheType != "" {
		attrs = append(attrs, attribute.String("reqcache.cache_type", cacheType))
	}
	attrs = append(attrs, i.traceAttrs...)

	return i.tracer.Start(ctx, "reqcache."+op, trace.WithAttributes(attrs...))
}

func (i *instrumentation) recordMetrics(ctx context.Context, op string, cacheType string, start time.Time, err error) {
	if i == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("reqcache.operation", op),
	}
	if cacheType != "" {
		attrs = append(attrs, attribute.String("reqcache.cache_type", cacheType))
	}

	if i.requests != nil {
		i.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if err != nil && i.errors != nil {
		i.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if i.duration != nil {
		i.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	}
}
