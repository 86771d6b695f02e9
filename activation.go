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
	"sync"
	"time"
)

// sampleWindow is the number of recent response-time samples retained per
// cache type.
const sampleWindow = 10

// ActivationPolicy decides, per cache type, whether caching is currently
// worth its memory and staleness cost.
//
// Types registered with AutoActivate start inactive. A type is promoted the
// first time either the most recent response-time sample exceeds the type's
// PerformanceThreshold, or the call counter reaches its UsageThreshold. Once
// promoted a type never reverts automatically; Deactivate exists for manual
// demotion. Types without AutoActivate are active from the start.
type ActivationPolicy struct {
	mu     sync.Mutex
	states map[string]*activationState
}

type activationState struct {
	autoActivate         bool
	performanceThreshold time.Duration
	usageThreshold       int
	samples              []time.Duration
	calls                int
	active               bool
}

func newActivationPolicy(types []CacheTypeConfig) *ActivationPolicy {
	states := make(map[string]*activationState, len(types))
	for _, config := range types {
		states[config.Name] = &activationState{
			autoActivate:         config.AutoActivate,
			performanceThreshold: config.PerformanceThreshold,
			usageThreshold:       config.UsageThreshold,
			active:               !config.AutoActivate,
		}
	}
	return &ActivationPolicy{states: states}
}

// RecordSample records one observed response time for the type and promotes
// it when the sample breaches the performance threshold.
func (p *ActivationPolicy) RecordSample(cacheType string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[cacheType]
	if !ok {
		return
	}

	state.samples = append(state.samples, elapsed)
	if len(state.samples) > sampleWindow {
		state.samples = state.samples[len(state.samples)-sampleWindow:]
	}

	if state.autoActivate && !state.active && state.performanceThreshold > 0 && elapsed > state.performanceThreshold {
		state.active = true
	}
}

// RecordCall increments the type's call counter and promotes it once the
// usage threshold is reached.
func (p *ActivationPolicy) RecordCall(cacheType string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[cacheType]
	if !ok {
		return
	}

	state.calls++
	if state.autoActivate && !state.active && state.usageThreshold > 0 && state.calls >= state.usageThreshold {
		state.active = true
	}
}

// Active reports whether the type is currently promoted.
func (p *ActivationPolicy) Active(cacheType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[cacheType]
	if !ok {
		return false
	}
	return state.active
}

// Deactivate manually demotes the type. It does not clear the type's cached
// entries; Engine.ForceDeactivate does both.
func (p *ActivationPolicy) Deactivate(cacheType string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.states[cacheType]; ok {
		state.active = false
		state.calls = 0
		state.samples = nil
	}
}

// Samples returns a copy of the recent response-time samples for the type.
func (p *ActivationPolicy) Samples(cacheType string) []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[cacheType]
	if !ok {
		return nil
	}
	samples := make([]time.Duration, len(state.samples))
	copy(samples, state.samples)
	return samples
}
