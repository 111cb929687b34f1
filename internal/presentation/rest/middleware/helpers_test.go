package middleware

import (
	"bytes"
	"testing"

	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"go.opentelemetry.io/otel/trace/noop"
)

// newTestLogger 出力をバッファに取り込むロガーを作成
func newTestLogger(t *testing.T) (*otelinfra.Logger, *bytes.Buffer) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer, otelinfra.LogLevelDebug)
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	return logger, buf
}
