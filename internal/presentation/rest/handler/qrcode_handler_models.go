package handler

// AssignPointsItem 付与対象の商品行
// @Description 付与対象の商品行
type AssignPointsItem struct {
	ProductID string `json:"product_id" example:"coffee"`
	Quantity  int64  `json:"quantity" example:"2"`
}

// AssignPointsRequest ポイント付与QRコード発行リクエスト
// @Description ポイント付与QRコード発行リクエスト
type AssignPointsRequest struct {
	Items []AssignPointsItem `json:"items"`
}

// RedeemPrizeRequest 景品交換QRコード発行リクエスト
// @Description 景品交換QRコード発行リクエスト
type RedeemPrizeRequest struct {
	PrizeID string `json:"prize_id" example:"mug"`
}

// QRCodeResponse QRコード発行レスポンス
// @Description QRコード発行レスポンス
type QRCodeResponse struct {
	Token       string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Kind        string `json:"kind" example:"assignment"`
	ExpiresAt   string `json:"expires_at" example:"2026-01-01T09:02:00Z"`
	TotalPoints int64  `json:"total_points,omitempty" example:"45"`
	QRCode      string `json:"qr_code" example:"data:image/png;base64,iVBORw0KGgo..."`
}

// ScannedRequest QRコード読み取りリクエスト
// @Description QRコード読み取りリクエスト
type ScannedRequest struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ScannedResponse QRコード読み取りレスポンス
// @Description QRコード読み取りレスポンス
type ScannedResponse struct {
	TransactionID string `json:"transaction_id" example:"4f8c2a8e-6a0b-4f57-9a55-0f3c8f2c7d11"`
	Kind          string `json:"kind" example:"assignment"`
	ClientID      string `json:"client_id" example:"client-1"`
	ShopID        string `json:"shop_id" example:"shop-a"`
	Points        int64  `json:"points" example:"45"`
	BalanceAfter  int64  `json:"balance_after" example:"145"`
}
