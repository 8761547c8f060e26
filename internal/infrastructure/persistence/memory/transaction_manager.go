package memory

import "context"

// TransactionManager メモリ実装ではトランザクションを持たず、そのまま実行する
// 一貫性はBalanceRepository.Saveのバージョン検査で保証する
type TransactionManager struct{}

// NewTransactionManager 新しいTransactionManagerを作成
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{}
}

// WithTransaction fnをそのまま実行
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
