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

import "errors"

var (
	// ErrCacheTypeNotFound is returned when an operation references a cache
	// type that was not registered in the configuration.
	ErrCacheTypeNotFound = errors.New("cache type not found")

	// ErrNilProducer is returned when a coordinated request is issued without
	// a producer.
	ErrNilProducer = errors.New("producer is required")

	// ErrProducerRateLimited is returned when the producer rate limit policy
	// rejects an invocation.
	ErrProducerRateLimited = errors.New("producer rate limited")

	// ErrProducerCircuitOpen is returned when the producer circuit breaker is
	// open and rejecting invocations.
	ErrProducerCircuitOpen = errors.New("producer circuit breaker is open")

	// ErrInvalidInterval is returned when registering a refresher without a
	// positive tick interval.
	ErrInvalidInterval = errors.New("refresh interval must be positive")

	// ErrRefresherExists is returned when registering a refresher whose key
	// is already registered.
	ErrRefresherExists = errors.New("refresher already registered")

	// ErrRefresherNotFound is returned when triggering a refresher that is
	// not registered.
	ErrRefresherNotFound = errors.New("refresher not found")

	// ErrEngineStopped is returned when a request is coordinated against an
	// engine that has been stopped.
	ErrEngineStopped = errors.New("engine is stopped")
)
