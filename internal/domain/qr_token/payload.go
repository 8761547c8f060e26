package qr_token

import (
	"strings"

	"points-server/internal/domain/account"
)

// Payload トークンに埋め込まれる操作内容。実装はAssignmentとRedemptionのみ
type Payload interface {
	Kind() Kind
	isPayload()
}

// Item 商品と数量の組
type Item struct {
	ProductID string
	Quantity  int64
}

// Assignment ポイント付与の内容（店舗が発行、顧客が読み取る）
type Assignment struct {
	ShopID      string
	Items       []Item
	TotalPoints int64
}

// NewAssignment 新しいAssignmentを作成
func NewAssignment(shopID string, items []Item, totalPoints int64) (*Assignment, error) {
	if !account.ValidID(shopID) {
		return nil, account.ErrInvalidAccountID
	}
	if totalPoints < 0 {
		return nil, ErrInvalidRequest
	}
	for _, item := range items {
		if item.ProductID == "" {
			return nil, ErrInvalidRequest
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	return &Assignment{
		ShopID:      shopID,
		Items:       copied,
		TotalPoints: totalPoints,
	}, nil
}

// Kind 種別を返す
func (a *Assignment) Kind() Kind {
	return KindAssignment
}

func (a *Assignment) isPayload() {}

// Redemption 景品交換の内容（顧客が発行、店舗が読み取る）
type Redemption struct {
	PrizeID  string
	ClientID string
}

// NewRedemption 新しいRedemptionを作成。prizeIDは前後の空白を除去する
func NewRedemption(prizeID, clientID string) (*Redemption, error) {
	prizeID = strings.TrimSpace(prizeID)
	if prizeID == "" {
		return nil, ErrEmptyPrizeID
	}
	if !account.ValidID(clientID) {
		return nil, account.ErrInvalidAccountID
	}
	return &Redemption{
		PrizeID:  prizeID,
		ClientID: clientID,
	}, nil
}

// Kind 種別を返す
func (r *Redemption) Kind() Kind {
	return KindRedemption
}

func (r *Redemption) isPayload() {}
