// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("with custom logger", func(t *testing.T) {
		var buf bytes.Buffer

		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := New(context.Background(), logger)

		assert.Same(t, logger, Logger(ctx), "Logger() must return the logger stored by New()")
	})

	t.Run("with nil logger should use default", func(t *testing.T) {
		ctx := New(context.Background(), nil)

		assert.Same(t, DefaultLogger, Logger(ctx), "New() with nil logger must store DefaultLogger")
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
				return New(context.Background(), logger)
			},
			expectDefault: false,
		},
		{
			name: "context without logger",
			setupContext: func() context.Context {
				return context.Background()
			},
			expectDefault: true,
		},
		{
			name: "context with nil logger value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())

			assert.NotNil(t, logger, "Logger() must never return nil")

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger, "Logger() must fall back to DefaultLogger")
			} else {
				assert.NotSame(t, DefaultLogger, logger, "Logger() must return the stored logger")
			}
		})
	}
}

func TestNewQuiet(t *testing.T) {
	ctx := NewQuiet(context.Background())
	logger := Logger(ctx)

	assert.NotSame(t, DefaultLogger, logger, "NewQuiet() must not store DefaultLogger")
	assert.False(t, logger.Enabled(ctx, slog.LevelError), "quiet logger must discard every level")
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	ctx := New(context.Background(), logger)

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{name: "Info logging", logFunc: Info, message: "batch started", expected: "INFO"},
		{name: "Debug logging", logFunc: Debug, message: "argv assembled", expected: "DEBUG"},
		{name: "Warn logging", logFunc: Warn, message: "output truncated", expected: "WARN"},
		{name: "Error logging", logFunc: Error, message: "runner failed", expected: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			output := buf.String()
			assert.Contains(t, output, tt.expected)
			assert.Contains(t, output, tt.message)
		})
	}
}

func TestLoggingWithDefaultLogger(t *testing.T) {
	// Must not panic when the context carries no logger.
	ctx := context.Background()

	Info(ctx, "test info")
	Debug(ctx, "test debug")
	Warn(ctx, "test warn")
	Error(ctx, "test error")
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     slog.Level
	}{
		{name: "DEBUG level", envValue: "DEBUG", want: slog.LevelDebug},
		{name: "INFO level", envValue: "INFO", want: slog.LevelInfo},
		{name: "WARN level", envValue: "WARN", want: slog.LevelWarn},
		{name: "ERROR level", envValue: "ERROR", want: slog.LevelError},
		{name: "lowercase is accepted", envValue: "debug", want: slog.LevelDebug},
		{name: "invalid level defaults to WARN", envValue: "LOUD", want: slog.LevelWarn},
		{name: "empty defaults to WARN", envValue: "", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.envValue)

			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}

func TestLevelVar(t *testing.T) {
	assert.NotNil(t, LevelVar, "LevelVar should not be nil")

	originalLevel := LevelVar.Level()
	defer LevelVar.Set(originalLevel)

	LevelVar.Set(slog.LevelDebug)

	assert.Equal(t, slog.LevelDebug, LevelVar.Level())
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug),
		"DefaultLogger must honor LevelVar changes")
	assert.True(t, JSONLogger.Enabled(context.Background(), slog.LevelDebug),
		"JSONLogger must honor LevelVar changes")
}

func TestDefaultLoggerWritesParsableOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPretty(&slog.HandlerOptions{
		Level: slog.LevelDebug,
	}, WithDestinationWriter(&buf)))

	logger.Info("expanded commands", "count", 4)

	output := buf.String()
	assert.Contains(t, output, "INFO:")
	assert.Contains(t, output, "expanded commands")
	assert.Contains(t, output, `"count"`)
	assert.True(t, strings.HasSuffix(output, "\n"), "log line must end with a newline")
}
