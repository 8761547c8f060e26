package history

import (
	"time"

	"points-server/internal/domain/transaction"
)

// GetTransactionHistoryRequest トランザクション履歴取得リクエスト
type GetTransactionHistoryRequest struct {
	Limit           int
	Offset          int
	TransactionType string // optional: "point_assignment" or "prize_redeem"
}

// TransactionView 履歴の1件（発行者・受領者のアカウント種別付き）
type TransactionView struct {
	TransactionID   string
	IssuerID        string
	IssuerRole      string
	ReceiverID      string
	ReceiverRole    string
	Points          int64
	TransactionType string
	Status          string
	Items           transaction.Items
	CreatedAt       time.Time
}

// GetTransactionHistoryResponse トランザクション履歴取得レスポンス
type GetTransactionHistoryResponse struct {
	Transactions []TransactionView
	Total        int
	Limit        int
	Offset       int
}
