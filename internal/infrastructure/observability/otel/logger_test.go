package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerWithZap(noop.NewTracerProvider().Tracer("test"), zap.New(core)), logs
}

func TestNewLogger(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := NewLogger(tracer)

	assert.NotNil(t, logger)
	assert.Equal(t, tracer, logger.tracer)
	assert.NotNil(t, logger.Zap())
}

func TestNewLoggerWithZap_Nil(t *testing.T) {
	logger := NewLoggerWithZap(noop.NewTracerProvider().Tracer("test"), nil)
	require.NotNil(t, logger.Zap())

	// Nopロガーでもパニックしないこと
	logger.Info(context.Background(), "message", nil)
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		message string
		fields  map[string]interface{}
		want    zapcore.Level
	}{
		{
			name:    "Infoレベルのログ",
			level:   LogLevelInfo,
			message: "test message",
			fields:  map[string]interface{}{"key": "value"},
			want:    zapcore.InfoLevel,
		},
		{
			name:    "Debugレベルのログ",
			level:   LogLevelDebug,
			message: "debug message",
			fields:  nil,
			want:    zapcore.DebugLevel,
		},
		{
			name:    "Warnレベルのログ",
			level:   LogLevelWarn,
			message: "warn message",
			fields:  map[string]interface{}{"count": 42},
			want:    zapcore.WarnLevel,
		},
		{
			name:    "Errorレベルのログ",
			level:   LogLevelError,
			message: "error message",
			fields:  map[string]interface{}{"error": "test error"},
			want:    zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger(zapcore.DebugLevel)
			logger.Log(context.Background(), tt.level, tt.message, tt.fields)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			ctxMap := entry.ContextMap()
			for k, v := range tt.fields {
				assert.EqualValues(t, v, ctxMap[k])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
}

func TestLogger_LogWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewLoggerWithZap(tp.Tracer("test"), zap.New(core))

	ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	logger.Info(ctx, "traced", nil)

	require.Equal(t, 1, logs.Len())
	ctxMap := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), ctxMap["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), ctxMap["span_id"])
}

func TestLogger_LogWithoutTraceContext(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)
	logger.Info(context.Background(), "untraced", nil)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		fields    map[string]interface{}
		wantError interface{}
	}{
		{
			name:      "エラーあり、フィールドなし",
			err:       assert.AnError,
			fields:    nil,
			wantError: assert.AnError.Error(),
		},
		{
			name:      "エラーあり、既存のerrorフィールドを上書き",
			err:       assert.AnError,
			fields:    map[string]interface{}{"error": "existing error", "key": "value"},
			wantError: assert.AnError.Error(),
		},
		{
			name:      "エラーなし、フィールドあり",
			err:       nil,
			fields:    map[string]interface{}{"key": "value"},
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger(zapcore.DebugLevel)
			logger.Error(context.Background(), "error message", tt.err, tt.fields)

			require.Equal(t, 1, logs.Len())
			ctxMap := logs.All()[0].ContextMap()
			assert.Equal(t, tt.wantError, ctxMap["error"])
		})
	}
}

func TestLogger_ErrorDoesNotMutateFields(t *testing.T) {
	logger, _ := newObservedLogger(zapcore.DebugLevel)
	fields := map[string]interface{}{"key": "value"}

	logger.Error(context.Background(), "error message", assert.AnError, fields)

	_, ok := fields["error"]
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"Error", LogLevelError, false},
		{"trace", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewZapLogger(t *testing.T) {
	z, err := NewZapLogger("debug")
	require.NoError(t, err)
	assert.True(t, z.Core().Enabled(zapcore.DebugLevel))

	_, err = NewZapLogger("verbose")
	assert.Error(t, err)
}
