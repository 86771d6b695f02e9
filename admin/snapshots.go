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

package admin

import "time"

// CacheTypeSnapshot is the admin-facing JSON payload describing one cache
// type at a single point in time.
//
// It combines configuration (TTL, size bound, activation mode) with runtime
// counters sampled at request time. Counters are process-lifetime totals and
// are not reset between calls. RecentSamples holds the response-time window
// the activation policy bases promotion decisions on, most recent last.
type CacheTypeSnapshot struct {
	Name          string          `json:"name"`
	TTL           time.Duration   `json:"ttl"`
	MaxSize       int             `json:"max_size"`
	Permanent     bool            `json:"permanent,omitempty"`
	AutoActivate  bool            `json:"auto_activate"`
	Active        bool            `json:"active"`
	Hits          uint64          `json:"hits"`
	Misses        uint64          `json:"misses"`
	Sets          uint64          `json:"sets"`
	Deletes       uint64          `json:"deletes"`
	Clears        uint64          `json:"clears"`
	Size          int             `json:"size"`
	HitRate       float64         `json:"hit_rate"`
	MemoryBytes   int64           `json:"memory_bytes"`
	RecentSamples []time.Duration `json:"recent_samples,omitempty"`
}
