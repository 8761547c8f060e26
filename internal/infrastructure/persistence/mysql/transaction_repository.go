package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/transaction"
)

const transactionColumns = `
	transaction_id, issuer_id, receiver_id, points,
	transaction_type, status, items, created_at
`

// TransactionRepository MySQL実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tracer: otel.Tracer("transaction-repository"),
	}
}

// Save トランザクションを保存（追記のみ。同じIDの再保存は無視される）
func (r *TransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.issuer_id", t.IssuerID()),
		attribute.String("db.receiver_id", t.ReceiverID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
		attribute.Int64("db.points", t.Points()),
		attribute.String("db.status", t.Status().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "point_transactions"),
	)

	itemsJSON, err := json.Marshal(t.Items())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT IGNORE INTO point_transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.conn(ctx).ExecContext(ctx, query,
		t.TransactionID(),
		t.IssuerID(),
		t.ReceiverID(),
		t.Points(),
		t.TransactionType().String(),
		t.Status().String(),
		string(itemsJSON),
		t.CreatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction saved")
	return nil
}

// FindByTransactionID トランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByTransactionID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_transactions"),
	)

	query := `SELECT ` + transactionColumns + ` FROM point_transactions WHERE transaction_id = ?`

	t, err := scanTransaction(r.db.conn(ctx).QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByParticipant 発行者または受領者が指定アカウントのトランザクションを新しい順に取得
func (r *TransactionRepository) FindByParticipant(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByParticipant")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.account_id", accountID),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_transactions"),
	)

	query := `
		SELECT ` + transactionColumns + `
		FROM point_transactions
		WHERE issuer_id = ? OR receiver_id = ?
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, accountID, accountID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}

// CountByParticipant 発行者または受領者が指定アカウントのトランザクション件数を取得
func (r *TransactionRepository) CountByParticipant(ctx context.Context, accountID string) (int, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.CountByParticipant")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.account_id", accountID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_transactions"),
	)

	var count int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM point_transactions WHERE issuer_id = ? OR receiver_id = ?`,
		accountID, accountID,
	).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transactions counted")
	return count, nil
}

// rowScanner *sql.Row と *sql.Rows に共通のScan
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var transactionID, issuerID, receiverID, dbType, dbStatus string
	var amount int64
	var itemsJSON []byte
	var createdAt time.Time

	if err := row.Scan(
		&transactionID,
		&issuerID,
		&receiverID,
		&amount,
		&dbType,
		&dbStatus,
		&itemsJSON,
		&createdAt,
	); err != nil {
		return nil, err
	}

	tt, err := transaction.NewTransactionType(dbType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}
	ts, err := transaction.NewTransactionStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction status: %w", err)
	}

	var items transaction.Items
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}

	t, err := transaction.NewTransaction(transactionID, issuerID, receiverID, amount, tt, ts, items, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transaction entity: %w", err)
	}
	return t, nil
}
