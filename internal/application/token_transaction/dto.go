package token_transaction

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"points-server/internal/domain/qr_token"
)

// ItemRequest 付与対象の商品と数量
type ItemRequest struct {
	ProductID string
	Quantity  int64
}

// Validate 商品IDと数量を検証
func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Quantity, validation.Required, validation.Min(int64(1))),
	)
}

// IssueAssignmentRequest ポイント付与トークン発行リクエスト
type IssueAssignmentRequest struct {
	Items []ItemRequest // 0件も可
}

// Validate 商品行の件数と各商品行を検証
func (r *IssueAssignmentRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Items, validation.Length(0, qr_token.MaxAssignmentItems)),
	); err != nil {
		return err
	}
	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IssueRedemptionRequest 景品交換トークン発行リクエスト
type IssueRedemptionRequest struct {
	PrizeID string
}

// IssueResponse トークン発行レスポンス
type IssueResponse struct {
	Token       string
	Kind        string // "assignment" or "redemption"
	ExpiresAt   time.Time
	TotalPoints int64 // 付与トークンのみ
}

// ConsumeRequest トークン読み取りリクエスト
type ConsumeRequest struct {
	Token string
}

// ConsumeResponse トークン読み取りレスポンス
type ConsumeResponse struct {
	TransactionID string
	Kind          string
	ClientID      string
	ShopID        string
	Points        int64
	BalanceAfter  int64
}
