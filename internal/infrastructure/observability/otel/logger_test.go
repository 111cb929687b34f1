package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	logger := NewLogger(noop.NewTracerProvider().Tracer("test"), level)
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.now = func() time.Time { return time.Date(2026, 10, 15, 0, 5, 0, 0, time.UTC) }
	return logger, buf
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestNewLogger(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	logger := NewLogger(tracer, LogLevelWarn)
	assert.Equal(t, tracer, logger.tracer)
	assert.Equal(t, LogLevelWarn, logger.minLevel)

	// 不明なレベルはINFO扱い
	logger = NewLogger(tracer, "TRACE")
	assert.Equal(t, LogLevelInfo, logger.minLevel)
}

func TestLogger_Log(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.Info(context.Background(), "mint completed", map[string]interface{}{"period": "D1", "users": 2})

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "mint completed", entries[0].Message)
	assert.Equal(t, "D1", entries[0].Fields["period"])
	assert.Equal(t, float64(2), entries[0].Fields["users"])
	assert.Equal(t, "2026-10-15T00:05:00Z", entries[0].Timestamp)
	assert.Empty(t, entries[0].TraceID)
}

func TestLogger_MinLevel(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  LogLevel
		wantCount int
	}{
		{name: "DEBUG以上を出力", minLevel: LogLevelDebug, wantCount: 4},
		{name: "INFO以上を出力", minLevel: LogLevelInfo, wantCount: 3},
		{name: "WARN以上を出力", minLevel: LogLevelWarn, wantCount: 2},
		{name: "ERRORのみ出力", minLevel: LogLevelError, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(tt.minLevel)
			ctx := context.Background()

			logger.Debug(ctx, "debug", nil)
			logger.Info(ctx, "info", nil)
			logger.Warn(ctx, "warn", nil)
			logger.Error(ctx, "error", nil, nil)

			assert.Len(t, decodeEntries(t, buf), tt.wantCount)
		})
	}
}

func TestLogger_Error(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.Error(context.Background(), "transfer failed", assert.AnError, map[string]interface{}{"error": "existing", "user_id": "user1"})
	logger.Error(context.Background(), "no cause", nil, nil)

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, assert.AnError.Error(), entries[0].Fields["error"])
	assert.Equal(t, "user1", entries[0].Fields["user_id"])
	assert.Nil(t, entries[1].Fields)
}

func TestLogger_LogWithTraceContext(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.Info(ctx, "traced", nil)

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", entries[0].TraceID)
	assert.Equal(t, "0102030405060708", entries[0].SpanID)
}
