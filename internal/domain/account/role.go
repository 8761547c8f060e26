package account

import (
	"fmt"
)

// Role 認証済み呼び出し元のアカウント種別を表す値オブジェクト
type Role string

const (
	RoleClient   Role = "client"   // 顧客
	RoleMerchant Role = "merchant" // 店舗
)

// NewRole 新しいRoleを作成
func NewRole(s string) (Role, error) {
	switch s {
	case "client", "merchant":
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, s)
	}
}

// String 文字列表現を返す
func (r Role) String() string {
	return string(r)
}

// IsClient 顧客かどうかを返す
func (r Role) IsClient() bool {
	return r == RoleClient
}

// IsMerchant 店舗かどうかを返す
func (r Role) IsMerchant() bool {
	return r == RoleMerchant
}

// Valid 有効なロールかどうかを返す
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleMerchant
}
