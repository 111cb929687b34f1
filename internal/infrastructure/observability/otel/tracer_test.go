package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mint-server/internal/infrastructure/config"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(&config.OpenTelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_OTLP(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Enabled:        true,
		OTLPEndpoint:   "http://localhost:4318",
		OTLPInsecure:   true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	}

	// エクスポーターは遅延接続のため初期化は成功する
	shutdown, err := InitTracer(cfg)
	require.NoError(t, err)
	assert.NotNil(t, Tracer("test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestNewResource(t *testing.T) {
	res, err := newResource(&config.OpenTelemetryConfig{ServiceName: "mint-server", ServiceVersion: "1.2.3"})
	require.NoError(t, err)
	assert.Contains(t, res.String(), "mint-server")
	assert.Contains(t, res.String(), "1.2.3")
}
