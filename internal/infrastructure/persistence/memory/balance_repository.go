package memory

import (
	"context"
	"sort"
	"sync"

	"points-server/internal/domain/points"
)

type balanceKey struct {
	clientID string
	shopID   string
}

type balanceRow struct {
	points  int64
	version int
}

// BalanceRepository メモリ上のBalanceRepository（バージョンによる楽観的ロック）
type BalanceRepository struct {
	mu   sync.RWMutex
	rows map[balanceKey]balanceRow
}

// NewBalanceRepository 新しいBalanceRepositoryを作成
func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{
		rows: make(map[balanceKey]balanceRow),
	}
}

// FindByClientAndShop 顧客IDと店舗IDで残高を取得
func (r *BalanceRepository) FindByClientAndShop(ctx context.Context, clientID, shopID string) (*points.Balance, error) {
	r.mu.RLock()
	row, ok := r.rows[balanceKey{clientID, shopID}]
	r.mu.RUnlock()
	if !ok {
		return nil, points.ErrBalanceNotFound
	}
	return points.NewBalance(clientID, shopID, row.points, row.version)
}

// FindByClient 顧客の全店舗分の残高を店舗ID順に取得
func (r *BalanceRepository) FindByClient(ctx context.Context, clientID string) ([]*points.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var balances []*points.Balance
	for k, row := range r.rows {
		if k.clientID != clientID {
			continue
		}
		b, err := points.NewBalance(k.clientID, k.shopID, row.points, row.version)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].ShopID() < balances[j].ShopID() })
	return balances, nil
}

// Create 残高行を0ポイントで作成（既に存在する場合は何もしない）
func (r *BalanceRepository) Create(ctx context.Context, balance *points.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := balanceKey{balance.ClientID(), balance.ShopID()}
	if _, ok := r.rows[key]; !ok {
		r.rows[key] = balanceRow{}
	}
	return nil
}

// Save 残高を保存（読み込み時のバージョンと一致しない場合はErrVersionConflict）
func (r *BalanceRepository) Save(ctx context.Context, balance *points.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := balanceKey{balance.ClientID(), balance.ShopID()}
	row, ok := r.rows[key]
	if !ok || row.version != balance.Version() {
		return points.ErrVersionConflict
	}
	r.rows[key] = balanceRow{points: balance.Points(), version: row.version + 1}
	balance.IncrementVersion()
	return nil
}
