package qr_token

import "errors"

var (
	// ErrTokenRejected 署名不正・期限切れ・使用済みのいずれか（区別は呼び出し元に公開しない）
	ErrTokenRejected = errors.New("token invalid, expired or already used")
	// ErrTokenInvalid 署名・形式が不正
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired 有効期限切れ
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidRequest 発行リクエストが不正
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyPrizeID 景品IDが空
	ErrEmptyPrizeID = errors.New("prize id is required")
	// ErrInvalidKind 無効なトークン種別
	ErrInvalidKind = errors.New("invalid token kind")
	// ErrInvalidQuantity 無効な数量
	ErrInvalidQuantity = errors.New("invalid quantity")
)
