package account

import "errors"

var (
	// ErrInvalidRole 無効なロール
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidAccountID アカウントIDが無効
	ErrInvalidAccountID = errors.New("invalid account id")
	// ErrRoleNotPermitted この操作は呼び出し元のロールでは実行できない
	ErrRoleNotPermitted = errors.New("role not permitted for this operation")
	// ErrAccountNotFound アカウントが見つからない
	ErrAccountNotFound = errors.New("account not found")
	// ErrPrincipalMissing 認証情報がコンテキストに存在しない
	ErrPrincipalMissing = errors.New("principal missing from context")
)
