package account

import (
	"context"
	"regexp"
)

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// Principal 認証済みの呼び出し元
type Principal struct {
	id   string
	role Role
}

// NewPrincipal 新しいPrincipalを作成
func NewPrincipal(id string, role Role) (*Principal, error) {
	if !ValidID(id) {
		return nil, ErrInvalidAccountID
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return &Principal{id: id, role: role}, nil
}

// MustNewPrincipal テスト用ヘルパー: NewPrincipalを呼び出し、エラーが発生した場合はpanicする
func MustNewPrincipal(id string, role Role) *Principal {
	p, err := NewPrincipal(id, role)
	if err != nil {
		panic(err)
	}
	return p
}

// ID アカウントIDを返す（店舗の場合はshopID）
func (p *Principal) ID() string {
	return p.id
}

// Role ロールを返す
func (p *Principal) Role() Role {
	return p.role
}

// Require 指定ロールでなければErrRoleNotPermittedを返す
func (p *Principal) Require(role Role) error {
	if p == nil || p.role != role {
		return ErrRoleNotPermitted
	}
	return nil
}

// ValidID アカウントIDの形式を検証
func ValidID(id string) bool {
	return accountIDRegex.MatchString(id)
}

type principalKey struct{}

// WithPrincipal Principalをコンテキストに設定
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext コンテキストからPrincipalを取得
func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p == nil {
		return nil, ErrPrincipalMissing
	}
	return p, nil
}
