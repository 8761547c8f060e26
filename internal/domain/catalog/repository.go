package catalog

import (
	"context"
)

// CatalogRepository 商品・景品カタログの参照インターフェース（読み取り専用）
type CatalogRepository interface {
	// FindProduct 商品を取得（存在しない場合はErrProductNotFound）
	FindProduct(ctx context.Context, productID string) (*Product, error)

	// FindPrize 景品を取得（存在しない場合はErrPrizeNotFound）
	FindPrize(ctx context.Context, prizeID string) (*Prize, error)
}
