package handler

// TransactionProduct 付与対象の商品行
// @Description 付与対象の商品行
type TransactionProduct struct {
	ProductID string `json:"product_id" example:"coffee"`
	Quantity  int64  `json:"quantity" example:"2"`
}

// TransactionItem トランザクションアイテム
// @Description トランザクションアイテム
type TransactionItem struct {
	TransactionID   string               `json:"transaction_id" example:"4f8c2a8e-6a0b-4f57-9a55-0f3c8f2c7d11"`
	IssuerID        string               `json:"issuer_id" example:"shop-a"`
	IssuerType      string               `json:"issuer_type" example:"merchant"`
	ReceiverID      string               `json:"receiver_id" example:"client-1"`
	ReceiverType    string               `json:"receiver_type" example:"client"`
	Points          int64                `json:"points" example:"45"`
	TransactionType string               `json:"transaction_type" example:"point_assignment"`
	Status          string               `json:"status" example:"success"`
	Products        []TransactionProduct `json:"products"`
	Prizes          []string             `json:"prizes"`
	CreatedAt       string               `json:"created_at" example:"2026-01-01T09:00:00Z"`
}

// TransactionHistoryResponse トランザクション履歴レスポンス
// @Description トランザクション履歴レスポンス
type TransactionHistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total" example:"1"`
	Limit        int               `json:"limit" example:"50"`
	Offset       int               `json:"offset" example:"0"`
}
