package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// ミント実行数（結果別）
	MintCount metric.Int64Counter

	// ミントで分配したトークン量
	TokensMinted metric.Float64Counter

	// 送金数
	TransferCount metric.Int64Counter

	// 生成したジェム数
	GemsGenerated metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー数
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := Meter(meterName)

	mintCount, err := meter.Int64Counter(
		"mints_total",
		metric.WithDescription("Total number of mint executions"),
	)
	if err != nil {
		return nil, err
	}

	tokensMinted, err := meter.Float64Counter(
		"tokens_minted_total",
		metric.WithDescription("Total amount of tokens distributed by mints"),
	)
	if err != nil {
		return nil, err
	}

	transferCount, err := meter.Int64Counter(
		"token_transfers_total",
		metric.WithDescription("Total number of token transfers"),
	)
	if err != nil {
		return nil, err
	}

	gemsGenerated, err := meter.Int64Counter(
		"gems_generated_total",
		metric.WithDescription("Total number of gems generated from interactions"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		MintCount:     mintCount,
		TokensMinted:  tokensMinted,
		TransferCount: transferCount,
		GemsGenerated: gemsGenerated,
		RequestCount:  requestCount,
		ResponseTime:  responseTime,
		ErrorCount:    errorCount,
	}, nil
}

// RecordMint ミントの結果を記録
func (m *Metrics) RecordMint(ctx context.Context, status string, distributed float64) {
	m.MintCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	if distributed > 0 {
		m.TokensMinted.Add(ctx, distributed)
	}
}

// RecordTransfer 送金を記録
func (m *Metrics) RecordTransfer(ctx context.Context, category string) {
	m.TransferCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordGemsGenerated 生成したジェム数を記録
func (m *Metrics) RecordGemsGenerated(ctx context.Context, category string, count int64) {
	m.GemsGenerated.Add(ctx, count,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
