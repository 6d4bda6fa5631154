package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))

	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatConsole, ParseFormat(""))
	assert.Equal(t, FormatConsole, ParseFormat("logfmt"))
}

func TestZapAdapter(t *testing.T) {
	t.Run("basic logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewZapLogger(LogConfig{Level: DebugLevel, Output: &buf})
		require.NoError(t, err)

		logger.Debug("debug message", Field{"key", "value"})
		logger.Info("info message", Field{"count", 42})
		logger.Warn("warn message", Field{"enabled", true})
		logger.Error("error message", errors.New("test error"), Field{"code", "SIG001"})

		output := buf.String()
		assert.Contains(t, output, "DEBUG")
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "WARN")
		assert.Contains(t, output, "ERROR")
		assert.Contains(t, output, "test error")
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewZapLogger(LogConfig{Level: WarnLevel, Output: &buf})
		require.NoError(t, err)

		logger.Debug("hidden debug")
		logger.Info("hidden info")
		logger.Warn("visible warn")

		output := buf.String()
		assert.NotContains(t, output, "hidden")
		assert.Contains(t, output, "visible warn")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewZapLogger(LogConfig{Level: InfoLevel, Format: FormatJSON, Output: &buf})
		require.NoError(t, err)

		logger.WithFields(String("component", "verifier")).Info("signature rejected", String("header", "X-Signature"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "signature rejected", entry["msg"])
		assert.Equal(t, "verifier", entry["component"])
		assert.Equal(t, "X-Signature", entry["header"])
		assert.Equal(t, "INFO", entry["level"])
	})

	t.Run("with context", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewZapLogger(LogConfig{Level: InfoLevel, Output: &buf})
		require.NoError(t, err)

		ctx := ContextWithRequestID(context.Background(), "req-123")
		ctx = context.WithValue(ctx, DeliveryKey, "delivery-9")
		logger.WithContext(ctx).Info("accepted")

		output := buf.String()
		assert.Contains(t, output, "req-123")
		assert.Contains(t, output, "delivery-9")
	})

	t.Run("with context without values returns same logger", func(t *testing.T) {
		logger, err := NewZapLogger(LogConfig{Level: InfoLevel, Output: &bytes.Buffer{}})
		require.NoError(t, err)

		assert.Same(t, logger, logger.WithContext(context.Background()))
		assert.Same(t, logger, logger.WithFields())
	})

	t.Run("prefix", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewZapLogger(LogConfig{Level: InfoLevel, Output: &buf, Prefix: "guard"})
		require.NoError(t, err)

		logger.Info("named")
		assert.Contains(t, buf.String(), "guard")
	})
}

func TestRequestIDFromContext(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := RequestIDFromContext(ContextWithRequestID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Info("ignored")
		logger.Error("ignored", errors.New("x"))
		logger.WithFields(Bool("ok", true)).WithContext(context.Background()).Debug("ignored")
	})
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{Level: DebugLevel, Output: &buf})
	require.NoError(t, err)
	SetGlobalLogger(logger)

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error", errors.New("boom"))
	WithFields(Int("n", 1)).Info("global fields")

	output := buf.String()
	for _, msg := range []string{"global debug", "global info", "global warn", "global error", "global fields", "boom"} {
		assert.Contains(t, output, msg)
	}
}

func TestGlobalLogger_Concurrency(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobalLogger(NewNopLogger())
		}()
		go func() {
			defer wg.Done()
			GetGlobalLogger().Info("concurrent")
		}()
	}
	wg.Wait()
}

func TestInitGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	path := filepath.Join(t.TempDir(), "guard.log")
	closer, err := InitGlobalLogger(Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	Info("written to file")
	MustSync()
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Logger initialized")
	assert.Contains(t, lines[1], "written to file")
}

func TestInitGlobalLogger_BadPath(t *testing.T) {
	_, err := InitGlobalLogger(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "guard.log")})
	assert.Error(t, err)
}
