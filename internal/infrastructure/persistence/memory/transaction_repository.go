package memory

import (
	"context"
	"sort"
	"sync"

	"points-server/internal/domain/transaction"
)

// TransactionRepository メモリ上のTransactionRepository（追記のみ）
type TransactionRepository struct {
	mu      sync.RWMutex
	records []*transaction.Transaction
	byID    map[string]*transaction.Transaction
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID: make(map[string]*transaction.Transaction),
	}
}

// Save トランザクションを保存（同じIDの再保存は無視される）
func (r *TransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.TransactionID()]; ok {
		return nil
	}
	r.byID[t.TransactionID()] = t
	r.records = append(r.records, t)
	return nil
}

// FindByTransactionID トランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[transactionID]
	if !ok {
		return nil, transaction.ErrTransactionNotFound
	}
	return t, nil
}

// FindByParticipant 発行者または受領者が指定アカウントのトランザクションを新しい順に取得
func (r *TransactionRepository) FindByParticipant(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	matched := r.participantRecords(accountID)
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().After(matched[j].CreatedAt())
		}
		return matched[i].TransactionID() > matched[j].TransactionID()
	})

	if offset >= len(matched) {
		return []*transaction.Transaction{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

// CountByParticipant 発行者または受領者が指定アカウントのトランザクション件数を取得
func (r *TransactionRepository) CountByParticipant(ctx context.Context, accountID string) (int, error) {
	return len(r.participantRecords(accountID)), nil
}

func (r *TransactionRepository) participantRecords(accountID string) []*transaction.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*transaction.Transaction
	for _, t := range r.records {
		if t.Involves(accountID) {
			matched = append(matched, t)
		}
	}
	return matched
}
