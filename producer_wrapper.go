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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tochemey/reqcache/internal/validation"
)

// RateLimitConfig bounds how often coordinated producers may be invoked.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained invocation rate.
	RequestsPerSecond float64
	// Burst is the number of invocations allowed to exceed the rate
	// momentarily.
	Burst int
	// WaitTimeout bounds how long an invocation may wait for a slot. Zero
	// means reject immediately when no slot is available.
	WaitTimeout time.Duration
}

func (r RateLimitConfig) String() string {
	return fmt.Sprintf("rateLimit[rps=%.2f, burst=%d]", r.RequestsPerSecond, r.Burst)
}

// CircuitBreakerConfig configures the consecutive-failure circuit breaker
// protecting coordinated producers.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before allowing a
	// trial invocation.
	ResetTimeout time.Duration
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// producerGuard wraps producers with the configured rate limit and circuit
// breaker. A nil guard applies no protection.
type producerGuard struct {
	limiter *rateLimiter
	breaker *circuitBreaker
}

func newProducerGuard(rateLimit *RateLimitConfig, circuit *CircuitBreakerConfig) *producerGuard {
	limiter := newRateLimiter(rateLimit)
	breaker := newCircuitBreaker(circuit)
	if limiter == nil && breaker == nil {
		return nil
	}
	return &producerGuard{
		limiter: limiter,
		breaker: breaker,
	}
}

func validateGuardConfig(rateLimit *RateLimitConfig, circuit *CircuitBreakerConfig) error {
	chain := validation.New(validation.AllErrors())
	if rateLimit != nil {
		chain = chain.
			AddAssertion(rateLimit.RequestsPerSecond > 0, "rateLimit.requestsPerSecond is invalid").
			AddAssertion(rateLimit.Burst >= 0, "rateLimit.burst is invalid").
			AddAssertion(rateLimit.WaitTimeout >= 0, "rateLimit.waitTimeout is invalid")
	}
	if circuit != nil {
		chain = chain.
			AddAssertion(circuit.FailureThreshold > 0, "circuitBreaker.failureThreshold is invalid").
			AddAssertion(circuit.ResetTimeout > 0, "circuitBreaker.resetTimeout is invalid")
	}
	return chain.Validate()
}

// wrap returns a producer protected by the guard's policies. Breaker
// rejections surface as ErrProducerCircuitOpen, limiter rejections as
// ErrProducerRateLimited; context errors pass through untouched.
func (g *producerGuard) wrap(producer Producer) Producer {
	if g == nil {
		return producer
	}

	return func(ctx context.Context) (any, error) {
		if g.breaker != nil && !g.breaker.Allow() {
			return nil, ErrProducerCircuitOpen
		}

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				if g.breaker != nil {
					g.breaker.Abort()
				}
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return nil, err
				}
				return nil, ErrProducerRateLimited
			}
		}

		value, err := producer(ctx)
		if g.breaker != nil {
			if err != nil {
				g.breaker.OnFailure()
			} else {
				g.breaker.OnSuccess()
			}
		}
		return value, err
	}
}

type rateLimiter struct {
	limiter     *rate.Limiter
	waitTimeout time.Duration
}

func newRateLimiter(cfg *RateLimitConfig) *rateLimiter {
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 0 {
		burst = 0
	}
	return &rateLimiter{
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		waitTimeout: cfg.WaitTimeout,
	}
}

func (r *rateLimiter) Wait(ctx context.Context) error {
	if r.waitTimeout == 0 {
		if !r.limiter.Allow() {
			return ErrProducerRateLimited
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	defer cancel()
	if err := r.limiter.Wait(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		if strings.Contains(err.Error(), "would exceed context deadline") {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

// circuitBreaker implements a consecutive-failure circuit breaker.
//
// Algorithm:
//   - Closed: invocations are allowed. After FailureThreshold consecutive
//     failures, the breaker opens and rejects all invocations.
//   - Open: invocations are rejected until ResetTimeout elapses.
//   - Half-open: exactly one invocation is allowed. Success closes the
//     breaker, failure re-opens it.
type circuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failures         int
	threshold        int
	resetTimeout     time.Duration
	openedAt         time.Time
	halfOpenInflight bool
}

func newCircuitBreaker(cfg *CircuitBreakerConfig) *circuitBreaker {
	if cfg == nil || cfg.FailureThreshold <= 0 || cfg.ResetTimeout <= 0 {
		return nil
	}
	return &circuitBreaker{
		state:        breakerClosed,
		threshold:    cfg.FailureThreshold,
		resetTimeout: cfg.ResetTimeout,
	}
}

func (c *circuitBreaker) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(c.openedAt) >= c.resetTimeout {
			c.state = breakerHalfOpen
			if c.halfOpenInflight {
				return false
			}
			c.halfOpenInflight = true
			return true
		}
		return false
	case breakerHalfOpen:
		if c.halfOpenInflight {
			return false
		}
		c.halfOpenInflight = true
		return true
	default:
		return false
	}
}

func (c *circuitBreaker) OnSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerHalfOpen:
		c.state = breakerClosed
		c.failures = 0
		c.halfOpenInflight = false
	case breakerClosed:
		c.failures = 0
	}
}

func (c *circuitBreaker) OnFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerHalfOpen:
		c.state = breakerOpen
		c.openedAt = time.Now()
		c.halfOpenInflight = false
	case breakerClosed:
		c.failures++
		if c.failures >= c.threshold {
			c.state = breakerOpen
			c.openedAt = time.Now()
		}
	}
}

func (c *circuitBreaker) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == breakerHalfOpen {
		c.halfOpenInflight = false
	}
}
