package qr_token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Token 署名済みトークン
type Token struct {
	raw       string
	payload   Payload
	expiresAt time.Time
}

// NewToken 新しいTokenを作成
func NewToken(raw string, payload Payload, expiresAt time.Time) *Token {
	return &Token{
		raw:       raw,
		payload:   payload,
		expiresAt: expiresAt,
	}
}

// Raw 署名済みの文字列を返す
func (t *Token) Raw() string {
	return t.raw
}

// Payload 操作内容を返す
func (t *Token) Payload() Payload {
	return t.payload
}

// Kind 種別を返す
func (t *Token) Kind() Kind {
	return t.payload.Kind()
}

// ExpiresAt 有効期限を返す
func (t *Token) ExpiresAt() time.Time {
	return t.expiresAt
}

// RemainingTTL 残り有効時間を返す（期限切れの場合は0）
func (t *Token) RemainingTTL(now time.Time) time.Duration {
	d := t.expiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

const (
	// MaxRawLength QRコード（誤り訂正レベルM）に収まるトークン文字列の最大長
	MaxRawLength = 2048
	// MaxAssignmentItems 付与トークン1枚に含められる商品行の上限
	MaxAssignmentItems = 20
)

// Key 保留レジストリで使用するキー（生のトークン文字列のSHA-256）
func Key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
