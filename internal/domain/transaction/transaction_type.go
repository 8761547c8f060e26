package transaction

import (
	"fmt"

	"points-server/internal/domain/account"
)

// TransactionType トランザクションタイプを表す値オブジェクト
type TransactionType string

const (
	TransactionTypePointAssignment TransactionType = "point_assignment" // ポイント付与（店舗→顧客）
	TransactionTypePrizeRedeem     TransactionType = "prize_redeem"     // 景品交換（顧客→店舗）
)

// NewTransactionType 新しいTransactionTypeを作成
func NewTransactionType(s string) (TransactionType, error) {
	switch s {
	case "point_assignment", "prize_redeem":
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String 文字列表現を返す
func (tt TransactionType) String() string {
	return string(tt)
}

// Valid 有効なトランザクションタイプかどうかを返す
func (tt TransactionType) Valid() bool {
	return tt == TransactionTypePointAssignment || tt == TransactionTypePrizeRedeem
}

// IssuerRole 発行者側のアカウント種別
func (tt TransactionType) IssuerRole() account.Role {
	if tt == TransactionTypePrizeRedeem {
		return account.RoleClient
	}
	return account.RoleMerchant
}

// ReceiverRole 受領者側のアカウント種別
func (tt TransactionType) ReceiverRole() account.Role {
	if tt == TransactionTypePrizeRedeem {
		return account.RoleMerchant
	}
	return account.RoleClient
}
