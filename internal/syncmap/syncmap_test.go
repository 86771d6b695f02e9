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

package syncmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("With set and get", func(t *testing.T) {
		m := New[string, int]()
		m.Set("a", 1)

		value, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, value)

		_, ok = m.Get("missing")
		require.False(t, ok)
	})
	t.Run("With delete", func(t *testing.T) {
		m := New[string, int]()
		m.Set("a", 1)
		m.Delete("a")

		_, ok := m.Get("a")
		require.False(t, ok)
		require.Zero(t, m.Len())
	})
	t.Run("With range", func(t *testing.T) {
		m := New[string, int]()
		m.Set("a", 1)
		m.Set("b", 2)

		seen := make(map[string]int)
		m.Range(func(key string, value int) {
			seen[key] = value
		})
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
	})
	t.Run("With reset", func(t *testing.T) {
		m := New[string, int]()
		m.Set("a", 1)
		m.Reset()
		require.Zero(t, m.Len())
	})
}
