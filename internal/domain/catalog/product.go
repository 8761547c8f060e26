package catalog

import (
	"points-server/internal/domain/account"
)

// Product 商品（1個あたりの付与ポイントと所有店舗）
type Product struct {
	productID     string
	shopID        string
	pointsPerUnit int64
}

// NewProduct 新しいProductを作成
func NewProduct(productID, shopID string, pointsPerUnit int64) (*Product, error) {
	if !account.ValidID(productID) {
		return nil, ErrInvalidProductID
	}
	if !account.ValidID(shopID) {
		return nil, account.ErrInvalidAccountID
	}
	if pointsPerUnit < 0 {
		return nil, ErrInvalidPoints
	}
	return &Product{
		productID:     productID,
		shopID:        shopID,
		pointsPerUnit: pointsPerUnit,
	}, nil
}

// MustNewProduct テスト用ヘルパー
func MustNewProduct(productID, shopID string, pointsPerUnit int64) *Product {
	p, err := NewProduct(productID, shopID, pointsPerUnit)
	if err != nil {
		panic(err)
	}
	return p
}

// ProductID 商品IDを返す
func (p *Product) ProductID() string {
	return p.productID
}

// ShopID 所有店舗IDを返す
func (p *Product) ShopID() string {
	return p.shopID
}

// PointsPerUnit 1個あたりのポイントを返す
func (p *Product) PointsPerUnit() int64 {
	return p.pointsPerUnit
}

// BelongsTo 指定店舗の商品かどうか
func (p *Product) BelongsTo(shopID string) bool {
	return p.shopID == shopID
}
