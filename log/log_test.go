// MIT License
//
// Copyright (c) 2021-2026 NorthIsUp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractField(t *testing.T, data []byte, key string) string {
	t.Helper()
	var entry map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &entry))
	raw, ok := entry[key]
	if !ok {
		return ""
	}
	var value string
	require.NoError(t, json.Unmarshal(raw, &value))
	return value
}

func TestZapLogger(t *testing.T) {
	t.Run("With debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		require.Equal(t, "test debug", extractField(t, buffer.Bytes(), "msg"))
		require.Equal(t, DebugLevel.String(), extractField(t, buffer.Bytes(), "level"))
	})

	t.Run("With info level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)

		logger.Debug("dropped")
		require.Zero(t, buffer.Len())

		logger.Infof("count=%d", 42)
		require.Equal(t, "count=42", extractField(t, buffer.Bytes(), "msg"))
	})

	t.Run("With invalid level falling back to debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(7, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())
	})

	t.Run("With default output", func(t *testing.T) {
		logger := NewZap(InfoLevel)
		require.Len(t, logger.LogOutput(), 1)
	})
}

func TestZapNamed(t *testing.T) {
	t.Run("With a single segment", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.Named("bot").Info("started")
		require.Equal(t, "bot", extractField(t, buffer.Bytes(), "logger"))
	})

	t.Run("With accumulated segments", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.Named("bot").Named("Cleaner").Info("started")
		require.Equal(t, "bot.Cleaner", extractField(t, buffer.Bytes(), "logger"))
	})

	t.Run("With DiscardLogger", func(t *testing.T) {
		require.Equal(t, DiscardLogger, DiscardLogger.Named("anything"))
	})
}

func TestZapWith(t *testing.T) {
	t.Run("With structured fields added to output", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("extension", "Cleaner", "attempts", 3).Info("started successfully")

		var entry map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
		require.Equal(t, "started successfully", extractField(t, buffer.Bytes(), "msg"))
		require.Contains(t, entry, "extension")
		require.Contains(t, entry, "attempts")
	})

	t.Run("With empty keyValues returning the same logger", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		assert.Equal(t, logger, logger.With())
	})

	t.Run("With odd keyValues using _ for the orphan", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("a", 1, "orphan").Info("msg")

		var entry map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
		require.Contains(t, entry, "a")
		require.Contains(t, entry, "_")
	})

	t.Run("With non-string keys skipped", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With(42, "ignored", "k", "v").Info("msg")

		var entry map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
		require.Contains(t, entry, "k")
	})

	t.Run("With DiscardLogger", func(t *testing.T) {
		assert.Equal(t, DiscardLogger, DiscardLogger.With("extension", "test"))
	})
}

func TestDiscardLogger(t *testing.T) {
	t.Run("With all levels silenced", func(t *testing.T) {
		DiscardLogger.Debug("debug")
		DiscardLogger.Debugf("debug %s", "fmt")
		DiscardLogger.Info("info")
		DiscardLogger.Infof("info %s", "fmt")
		DiscardLogger.Warn("warn")
		DiscardLogger.Warnf("warn %s", "fmt")
		DiscardLogger.Error("error")
		DiscardLogger.Errorf("error %s", "fmt")
		require.Equal(t, InfoLevel, DiscardLogger.LogLevel())
		require.Equal(t, discardOutputs, DiscardLogger.LogOutput())
		require.NotNil(t, DiscardLogger.StdLogger())
	})

	t.Run("With panic still panicking", func(t *testing.T) {
		assert.Panics(t, func() { DiscardLogger.Panic("boom") })
		assert.Panics(t, func() { DiscardLogger.Panicf("boom %d", 1) })
	})
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", InfoLevel.String())
	assert.Equal(t, "warn", WarningLevel.String())
	assert.Equal(t, "error", ErrorLevel.String())
	assert.Equal(t, "fatal", FatalLevel.String())
	assert.Equal(t, "panic", PanicLevel.String())
	assert.Equal(t, "debug", DebugLevel.String())
	assert.Equal(t, "invalid", Level(-1).String())
}
