package otel

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger 構造化ロガー
type Logger struct {
	tracer   trace.Tracer
	minLevel LogLevel
	out      *log.Logger
	now      func() time.Time
}

// NewLogger 新しいLoggerを作成
func NewLogger(tracer trace.Tracer, minLevel LogLevel) *Logger {
	if minLevel.rank() < 0 {
		minLevel = LogLevelInfo
	}
	return &Logger{
		tracer:   tracer,
		minLevel: minLevel,
		out:      log.New(os.Stdout, "", 0),
		now:      time.Now,
	}
}

// SetOutput 出力先を変更
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (lv LogLevel) rank() int {
	switch lv {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	case LogLevelError:
		return 3
	default:
		return -1
	}
}

// LogEntry ログエントリ
type LogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	if level.rank() < l.minLevel.rank() {
		return
	}

	entry := LogEntry{
		Level:     string(level),
		Message:   message,
		Fields:    fields,
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
	}

	// トレースIDとSpanIDを取得
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		entry.TraceID = span.SpanContext().TraceID().String()
		entry.SpanID = span.SpanContext().SpanID().String()
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		l.out.Printf("failed to marshal log entry: %v", err)
		return
	}

	l.out.Println(string(jsonData))
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, fields)
}
