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

	"points-server/internal/domain/catalog"
)

// CatalogRepository MySQL実装のCatalogRepository
type CatalogRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewCatalogRepository 新しいCatalogRepositoryを作成
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		tracer: otel.Tracer("catalog-repository"),
	}
}

// FindProduct 商品を取得
func (r *CatalogRepository) FindProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.product_id", productID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "products"),
	)

	var dbProductID, shopID string
	var pts int64
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT product_id, shop_id, points FROM products WHERE product_id = ?`,
		productID,
	).Scan(&dbProductID, &shopID, &pts)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "product not found")
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	product, err := catalog.NewProduct(dbProductID, shopID, pts)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct product entity: %w", err)
	}
	span.SetStatus(otelcodes.Ok, "product found")
	return product, nil
}

// FindPrize 景品を取得
func (r *CatalogRepository) FindPrize(ctx context.Context, prizeID string) (*catalog.Prize, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindPrize")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.prize_id", prizeID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "prizes"),
	)

	var dbPrizeID, shopID string
	var cost int64
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT prize_id, shop_id, points FROM prizes WHERE prize_id = ?`,
		prizeID,
	).Scan(&dbPrizeID, &shopID, &cost)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "prize not found")
		return nil, catalog.ErrPrizeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find prize: %w", err)
	}

	prize, err := catalog.NewPrize(dbPrizeID, shopID, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct prize entity: %w", err)
	}
	span.SetStatus(otelcodes.Ok, "prize found")
	return prize, nil
}
