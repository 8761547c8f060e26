package account

import (
	"context"
)

// AccountDirectory アカウント存在確認インターフェース
type AccountDirectory interface {
	// ClientExists 顧客が存在するか確認
	ClientExists(ctx context.Context, clientID string) (bool, error)
}
