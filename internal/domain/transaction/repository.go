package transaction

import (
	"context"
)

// TransactionRepository トランザクションリポジトリインターフェース（追記のみ）
type TransactionRepository interface {
	// Save トランザクションを保存
	Save(ctx context.Context, transaction *Transaction) error

	// FindByTransactionID トランザクションIDでトランザクションを取得
	FindByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)

	// FindByParticipant 発行者または受領者が指定アカウントのトランザクションを新しい順に取得
	FindByParticipant(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error)

	// CountByParticipant 発行者または受領者が指定アカウントのトランザクション件数を取得
	CountByParticipant(ctx context.Context, accountID string) (int, error)
}
