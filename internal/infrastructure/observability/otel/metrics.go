package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 発行したQRトークン数
	TokensIssued metric.Int64Counter

	// 消費に成功したQRトークン数
	TokensConsumed metric.Int64Counter

	// 拒否したQRトークン数
	TokensRejected metric.Int64Counter

	// 付与・減算したポイント
	PointsCredited metric.Int64Counter
	PointsDebited  metric.Int64Counter

	// 取引記録数
	TransactionCount metric.Int64Counter

	// 取引記録の書き込み失敗数
	AuditFailureCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.TokensIssued, "qr_tokens_issued_total", "Total number of issued QR tokens"},
		{&m.TokensConsumed, "qr_tokens_consumed_total", "Total number of consumed QR tokens"},
		{&m.TokensRejected, "qr_tokens_rejected_total", "Total number of rejected QR tokens"},
		{&m.PointsCredited, "points_credited_total", "Total points credited to clients"},
		{&m.PointsDebited, "points_debited_total", "Total points debited from clients"},
		{&m.TransactionCount, "transactions_total", "Total number of recorded transactions"},
		{&m.AuditFailureCount, "transaction_record_failures_total", "Total number of transaction records that could not be persisted"},
		{&m.RequestCount, "requests_total", "Total number of requests"},
		{&m.ErrorCount, "errors_total", "Total number of errors"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}
	m.ResponseTime = responseTime

	return m, nil
}

// RecordTokenIssued トークン発行を記録
func (m *Metrics) RecordTokenIssued(ctx context.Context, kind string) {
	m.TokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordTokenConsumed トークン消費を記録
func (m *Metrics) RecordTokenConsumed(ctx context.Context, kind string) {
	m.TokensConsumed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordTokenRejected トークン拒否を記録
func (m *Metrics) RecordTokenRejected(ctx context.Context, reason string) {
	m.TokensRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordPointsCredited 付与ポイントを記録
func (m *Metrics) RecordPointsCredited(ctx context.Context, shopID string, amount int64) {
	m.PointsCredited.Add(ctx, amount, metric.WithAttributes(attribute.String("shop_id", shopID)))
}

// RecordPointsDebited 減算ポイントを記録
func (m *Metrics) RecordPointsDebited(ctx context.Context, shopID string, amount int64) {
	m.PointsDebited.Add(ctx, amount, metric.WithAttributes(attribute.String("shop_id", shopID)))
}

// RecordTransaction 取引記録を記録
func (m *Metrics) RecordTransaction(ctx context.Context, transactionType, status string) {
	m.TransactionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("transaction_type", transactionType),
			attribute.String("status", status),
		),
	)
}

// RecordAuditFailure 取引記録の書き込み失敗を記録
func (m *Metrics) RecordAuditFailure(ctx context.Context, transactionType string) {
	m.AuditFailureCount.Add(ctx, 1, metric.WithAttributes(attribute.String("transaction_type", transactionType)))
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
