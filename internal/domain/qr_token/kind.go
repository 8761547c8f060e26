package qr_token

import (
	"fmt"
)

// Kind トークン種別を表す値オブジェクト
type Kind string

const (
	KindAssignment Kind = "assignment" // ポイント付与
	KindRedemption Kind = "redemption" // 景品交換
)

// NewKind 新しいKindを作成
func NewKind(s string) (Kind, error) {
	switch s {
	case "assignment", "redemption":
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
}

// String 文字列表現を返す
func (k Kind) String() string {
	return string(k)
}

// Valid 有効な種別かどうかを返す
func (k Kind) Valid() bool {
	return k == KindAssignment || k == KindRedemption
}
