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

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	t.Run("With Info logging", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)
		logger.Info("test info")
		require.Contains(t, buffer.String(), "test info")
		assert.Equal(t, InfoLevel, logger.LogLevel())
	})
	t.Run("With Debug suppressed at InfoLevel", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)
		logger.Debugf("hidden %d", 42)
		assert.Empty(t, buffer.String())
	})
	t.Run("With Debug logging", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(DebugLevel, buffer)
		logger.Debugf("visible %d", 42)
		assert.Contains(t, buffer.String(), "visible 42")
	})
	t.Run("With level names", func(t *testing.T) {
		assert.Equal(t, "debug", DebugLevel.String())
		assert.Equal(t, "info", InfoLevel.String())
		assert.Equal(t, "warning", WarningLevel.String())
		assert.Equal(t, "error", ErrorLevel.String())
		assert.Equal(t, "fatal", FatalLevel.String())
	})
}
