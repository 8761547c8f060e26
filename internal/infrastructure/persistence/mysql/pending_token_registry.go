package mysql

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/qr_token"
)

// PendingTokenRegistry pending_tokens テーブルを使った保留トークンレジストリ
// 生のトークンは保存せず、SHA-256のハッシュのみを保存する
type PendingTokenRegistry struct {
	db     *DB
	now    func() time.Time
	tracer trace.Tracer
}

// NewPendingTokenRegistry 新しいPendingTokenRegistryを作成
func NewPendingTokenRegistry(db *DB) *PendingTokenRegistry {
	return &PendingTokenRegistry{
		db:     db,
		now:    time.Now,
		tracer: otel.Tracer("pending-token-registry"),
	}
}

// Register トークンを保留状態として登録
func (r *PendingTokenRegistry) Register(ctx context.Context, raw string, ttl time.Duration) error {
	ctx, span := r.tracer.Start(ctx, "PendingTokenRegistry.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "pending_tokens"),
	)

	if ttl <= 0 {
		return nil
	}

	query := `
		INSERT INTO pending_tokens (token_hash, expires_at)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE expires_at = VALUES(expires_at)
	`
	if _, err := r.db.conn(ctx).ExecContext(ctx, query, qr_token.Key(raw), r.now().Add(ttl).UTC()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to register token: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "token registered")
	return nil
}

// IsPending 保留中かどうか（期限切れは削除前でもfalse）
func (r *PendingTokenRegistry) IsPending(ctx context.Context, raw string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PendingTokenRegistry.IsPending")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "pending_tokens"),
	)

	var pending bool
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pending_tokens WHERE token_hash = ? AND expires_at > ?)`,
		qr_token.Key(raw), r.now().UTC(),
	).Scan(&pending)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to look up token: %w", err)
	}
	return pending, nil
}

// Retire 期限内の行を削除できた場合のみ取得成功
func (r *PendingTokenRegistry) Retire(ctx context.Context, raw string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PendingTokenRegistry.Retire")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "pending_tokens"),
	)

	result, err := r.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM pending_tokens WHERE token_hash = ? AND expires_at > ?`,
		qr_token.Key(raw), r.now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to retire token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Bool("registry.claimed", rowsAffected == 1))
	return rowsAffected == 1, nil
}

// Sweep 期限切れの行を削除
func (r *PendingTokenRegistry) Sweep(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "PendingTokenRegistry.Sweep")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "pending_tokens"),
	)

	result, err := r.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM pending_tokens WHERE expires_at <= ?`,
		r.now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to sweep tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("registry.removed", rowsAffected))
	return int(rowsAffected), nil
}

// Len 保留中（期限内）の件数
func (r *PendingTokenRegistry) Len(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "PendingTokenRegistry.Len")
	defer span.End()

	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_tokens WHERE expires_at > ?`,
		r.now().UTC(),
	).Scan(&n)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return n, nil
}
