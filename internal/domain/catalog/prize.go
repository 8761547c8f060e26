package catalog

import (
	"points-server/internal/domain/account"
)

// Prize 景品（交換に必要なポイントと所有店舗）
type Prize struct {
	prizeID string
	shopID  string
	cost    int64
}

// NewPrize 新しいPrizeを作成
func NewPrize(prizeID, shopID string, cost int64) (*Prize, error) {
	if !account.ValidID(prizeID) {
		return nil, ErrInvalidPrizeID
	}
	if !account.ValidID(shopID) {
		return nil, account.ErrInvalidAccountID
	}
	if cost < 0 {
		return nil, ErrInvalidPoints
	}
	return &Prize{
		prizeID: prizeID,
		shopID:  shopID,
		cost:    cost,
	}, nil
}

// MustNewPrize テスト用ヘルパー
func MustNewPrize(prizeID, shopID string, cost int64) *Prize {
	p, err := NewPrize(prizeID, shopID, cost)
	if err != nil {
		panic(err)
	}
	return p
}

// PrizeID 景品IDを返す
func (p *Prize) PrizeID() string {
	return p.prizeID
}

// ShopID 所有店舗IDを返す
func (p *Prize) ShopID() string {
	return p.shopID
}

// Cost 交換に必要なポイントを返す
func (p *Prize) Cost() int64 {
	return p.cost
}

// BelongsTo 指定店舗の景品かどうか
func (p *Prize) BelongsTo(shopID string) bool {
	return p.shopID == shopID
}
