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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Run("With sorted parameter names", func(t *testing.T) {
		key := Key(Params{"b": 2, "a": 1, "c": "x"})
		require.Equal(t, "a:1|b:2|c:x", key)
	})
	t.Run("With deterministic output", func(t *testing.T) {
		first := Key(Params{"status": "open", "page": 3, "limit": 25})
		second := Key(Params{"limit": 25, "page": 3, "status": "open"})
		require.Equal(t, first, second)
	})
	t.Run("With distinct values", func(t *testing.T) {
		require.NotEqual(t, Key(Params{"a": 1}), Key(Params{"a": 2}))
	})
	t.Run("With empty params", func(t *testing.T) {
		require.Empty(t, Key(nil))
		require.Empty(t, Key(Params{}))
	})
	t.Run("With mixed value types", func(t *testing.T) {
		key := Key(Params{"active": true, "ratio": 1.5, "name": "cpu"})
		require.Equal(t, "active:true|name:cpu|ratio:1.5", key)
	})
}
