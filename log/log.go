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

// Package log provides the leveled logger used across reqcache.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level defines the logging verbosity.
type Level int

const (
	// InfoLevel is the default logging priority.
	InfoLevel Level = iota
	// DebugLevel logs are typically voluminous and disabled in production.
	DebugLevel
	// WarningLevel logs are more important than Info, but do not need
	// individual human review.
	WarningLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// DefaultLogger is the logger used when none is configured.
var DefaultLogger = New(InfoLevel, os.Stderr)

// DiscardLogger drops every record. Handy in tests.
var DiscardLogger = New(InfoLevel, io.Discard)

// Logger defines the logging interface consumed by reqcache components.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(args ...any)
	// Debugf logs a formatted message at DebugLevel.
	Debugf(format string, args ...any)
	// Info logs a message at InfoLevel.
	Info(args ...any)
	// Infof logs a formatted message at InfoLevel.
	Infof(format string, args ...any)
	// Warn logs a message at WarningLevel.
	Warn(args ...any)
	// Warnf logs a formatted message at WarningLevel.
	Warnf(format string, args ...any)
	// Error logs a message at ErrorLevel.
	Error(args ...any)
	// Errorf logs a formatted message at ErrorLevel.
	Errorf(format string, args ...any)
	// Fatal logs a message at FatalLevel then exits.
	Fatal(args ...any)
	// Fatalf logs a formatted message at FatalLevel then exits.
	Fatalf(format string, args ...any)
	// LogLevel returns the configured level.
	LogLevel() Level
}

// Log is the zap-backed Logger implementation.
type Log struct {
	*zap.SugaredLogger
	level Level
}

var _ Logger = (*Log)(nil)

// New creates a Log writing records at or above level to the given writers.
func New(level Level, writers ...io.Writer) *Log {
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	var zapLevel zapcore.Level
	switch level {
	case DebugLevel:
		zapLevel = zapcore.DebugLevel
	case WarningLevel:
		zapLevel = zapcore.WarnLevel
	case ErrorLevel:
		zapLevel = zapcore.ErrorLevel
	case FatalLevel:
		zapLevel = zapcore.FatalLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		zapLevel,
	)

	logger := zap.New(core)
	return &Log{
		SugaredLogger: logger.Sugar(),
		level:         level,
	}
}

// LogLevel returns the configured level.
func (l *Log) LogLevel() Level {
	return l.level
}

// String renders a log level name.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarningLevel:
		return "warning"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
