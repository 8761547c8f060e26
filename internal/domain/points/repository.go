package points

import (
	"context"
)

// BalanceRepository ポイント残高リポジトリインターフェース
type BalanceRepository interface {
	// FindByClientAndShop 顧客IDと店舗IDで残高を取得
	FindByClientAndShop(ctx context.Context, clientID, shopID string) (*Balance, error)

	// FindByClient 顧客の全店舗分の残高を取得
	FindByClient(ctx context.Context, clientID string) ([]*Balance, error)

	// Create 残高行を0ポイントで作成（既に存在する場合は何もしない）
	Create(ctx context.Context, balance *Balance) error

	// Save 残高を保存（楽観的ロック、競合時はErrVersionConflict）
	Save(ctx context.Context, balance *Balance) error
}
