package transaction

import "errors"

var (
	// ErrTransactionNotFound トランザクションが見つからないエラー
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidTransaction 無効なトランザクションエラー
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidTransactionID トランザクションIDが無効
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrInvalidParticipant 発行者または受領者のIDが無効
	ErrInvalidParticipant = errors.New("invalid issuer or receiver id")
	// ErrInvalidPoints ポイント数が無効
	ErrInvalidPoints = errors.New("invalid points")
)
