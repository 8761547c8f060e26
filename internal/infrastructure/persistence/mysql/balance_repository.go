package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/points"
)

// BalanceRepository MySQL実装のBalanceRepository
type BalanceRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewBalanceRepository 新しいBalanceRepositoryを作成
func NewBalanceRepository(db *DB) *BalanceRepository {
	return &BalanceRepository{
		db:     db,
		tracer: otel.Tracer("balance-repository"),
	}
}

// FindByClientAndShop 顧客IDと店舗IDで残高を取得
// トランザクション内では行ロック（FOR UPDATE）を取得する
func (r *BalanceRepository) FindByClientAndShop(ctx context.Context, clientID, shopID string) (*points.Balance, error) {
	ctx, span := r.tracer.Start(ctx, "BalanceRepository.FindByClientAndShop")
	defer span.End()

	_, locking := txFromContext(ctx)
	span.SetAttributes(
		attribute.String("db.client_id", clientID),
		attribute.String("db.shop_id", shopID),
		attribute.Bool("db.for_update", locking),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		SELECT client_id, shop_id, points, version
		FROM point_balances
		WHERE client_id = ? AND shop_id = ?
	`
	if locking {
		query += " FOR UPDATE"
	}

	var dbClientID, dbShopID string
	var amount int64
	var version int
	err := r.db.conn(ctx).QueryRowContext(ctx, query, clientID, shopID).Scan(&dbClientID, &dbShopID, &amount, &version)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "balance not found")
		return nil, points.ErrBalanceNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, wrapLockConflict(err, "failed to find balance")
	}

	balance, err := points.NewBalance(dbClientID, dbShopID, amount, version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct balance entity: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.points", amount), attribute.Int("db.version", version))
	span.SetStatus(otelcodes.Ok, "balance found")
	return balance, nil
}

// FindByClient 顧客の全店舗分の残高を取得
func (r *BalanceRepository) FindByClient(ctx context.Context, clientID string) ([]*points.Balance, error) {
	ctx, span := r.tracer.Start(ctx, "BalanceRepository.FindByClient")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.client_id", clientID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		SELECT client_id, shop_id, points, version
		FROM point_balances
		WHERE client_id = ?
		ORDER BY shop_id
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []*points.Balance
	for rows.Next() {
		var dbClientID, dbShopID string
		var amount int64
		var version int
		if err := rows.Scan(&dbClientID, &dbShopID, &amount, &version); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balance, err := points.NewBalance(dbClientID, dbShopID, amount, version)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct balance entity: %w", err)
		}
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(balances)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d balances", len(balances)))
	return balances, nil
}

// Create 残高行を0ポイントで作成（既に存在する場合は何もしない）
func (r *BalanceRepository) Create(ctx context.Context, balance *points.Balance) error {
	ctx, span := r.tracer.Start(ctx, "BalanceRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.client_id", balance.ClientID()),
		attribute.String("db.shop_id", balance.ShopID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		INSERT INTO point_balances (client_id, shop_id, points, version)
		VALUES (?, ?, 0, 0)
		ON DUPLICATE KEY UPDATE client_id = client_id
	`

	if _, err := r.db.conn(ctx).ExecContext(ctx, query, balance.ClientID(), balance.ShopID()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return wrapLockConflict(err, "failed to create balance")
	}

	span.SetStatus(otelcodes.Ok, "balance created")
	return nil
}

// Save 残高を保存（読み込み時のバージョンと一致しない場合はErrVersionConflict）
func (r *BalanceRepository) Save(ctx context.Context, balance *points.Balance) error {
	ctx, span := r.tracer.Start(ctx, "BalanceRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.client_id", balance.ClientID()),
		attribute.String("db.shop_id", balance.ShopID()),
		attribute.Int64("db.points", balance.Points()),
		attribute.Int("db.version", balance.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		UPDATE point_balances
		SET points = ?, version = version + 1
		WHERE client_id = ? AND shop_id = ? AND version = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		balance.Points(),
		balance.ClientID(),
		balance.ShopID(),
		balance.Version(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return wrapLockConflict(err, "failed to save balance")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Error, "optimistic lock failed")
		return points.ErrVersionConflict
	}

	balance.IncrementVersion()
	span.SetStatus(otelcodes.Ok, "balance saved")
	return nil
}

// wrapLockConflict ロック競合はErrVersionConflictとして返し、呼び出し元での再試行対象にする
func wrapLockConflict(err error, msg string) error {
	if isLockConflict(err) {
		return fmt.Errorf("%s: %w: %v", msg, points.ErrVersionConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
