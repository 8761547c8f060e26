package mysql

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AccountDirectory MySQL実装のAccountDirectory
type AccountDirectory struct {
	db     *DB
	tracer trace.Tracer
}

// NewAccountDirectory 新しいAccountDirectoryを作成
func NewAccountDirectory(db *DB) *AccountDirectory {
	return &AccountDirectory{
		db:     db,
		tracer: otel.Tracer("account-directory"),
	}
}

// ClientExists 顧客が存在するか確認
func (d *AccountDirectory) ClientExists(ctx context.Context, clientID string) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "AccountDirectory.ClientExists")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.client_id", clientID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "clients"),
	)

	var exists bool
	err := d.db.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clients WHERE client_id = ?)`,
		clientID,
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check client: %w", err)
	}

	span.SetAttributes(attribute.Bool("db.exists", exists))
	span.SetStatus(otelcodes.Ok, "client checked")
	return exists, nil
}
