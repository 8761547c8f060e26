package points

import "errors"

var (
	// ErrInvalidClientID 顧客IDが無効
	ErrInvalidClientID = errors.New("invalid client id")
	// ErrInvalidShopID 店舗IDが無効
	ErrInvalidShopID = errors.New("invalid shop id")
	// ErrInvalidAmount 無効なポイント数
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientPoints ポイント残高不足
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrBalanceOutOfRange 残高が範囲外
	ErrBalanceOutOfRange = errors.New("balance out of range")
	// ErrBalanceNotFound 残高が見つからない
	ErrBalanceNotFound = errors.New("balance not found")
	// ErrVersionConflict 楽観的ロックの競合
	ErrVersionConflict = errors.New("balance version conflict")
)
