package transaction

import (
	"fmt"
)

// TransactionStatus トランザクションステータスを表す値オブジェクト
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success" // 成功
	TransactionStatusFailure TransactionStatus = "failure" // 失敗
)

// NewTransactionStatus 新しいTransactionStatusを作成
func NewTransactionStatus(s string) (TransactionStatus, error) {
	switch s {
	case "success", "failure":
		return TransactionStatus(s), nil
	default:
		return "", fmt.Errorf("invalid transaction status: %s", s)
	}
}

// String 文字列表現を返す
func (ts TransactionStatus) String() string {
	return string(ts)
}

// Valid 有効なトランザクションステータスかどうかを返す
func (ts TransactionStatus) Valid() bool {
	return ts == TransactionStatusSuccess || ts == TransactionStatusFailure
}

// IsSuccess 成功かどうかを返す
func (ts TransactionStatus) IsSuccess() bool {
	return ts == TransactionStatusSuccess
}
