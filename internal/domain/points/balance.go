package points

import (
	"points-server/internal/domain/account"
)

const (
	// MaxPoints 残高とポイント移動量の上限
	MaxPoints = 1_000_000_000_000
)

// Balance 顧客×店舗単位のポイント残高エンティティ
type Balance struct {
	clientID string
	shopID   string
	points   int64 // 常に0以上
	version  int   // 楽観的ロック用（読み込み時点の値）
}

// NewBalance 新しいBalanceエンティティを作成
func NewBalance(clientID, shopID string, points int64, version int) (*Balance, error) {
	if !account.ValidID(clientID) {
		return nil, ErrInvalidClientID
	}
	if !account.ValidID(shopID) {
		return nil, ErrInvalidShopID
	}
	if points < 0 || points > MaxPoints {
		return nil, ErrBalanceOutOfRange
	}
	return &Balance{
		clientID: clientID,
		shopID:   shopID,
		points:   points,
		version:  version,
	}, nil
}

// MustNewBalance テスト用ヘルパー: NewBalanceを呼び出し、エラーが発生した場合はpanicする
func MustNewBalance(clientID, shopID string, points int64, version int) *Balance {
	b, err := NewBalance(clientID, shopID, points, version)
	if err != nil {
		panic(err)
	}
	return b
}

// ClientID 顧客IDを返す
func (b *Balance) ClientID() string {
	return b.clientID
}

// ShopID 店舗IDを返す
func (b *Balance) ShopID() string {
	return b.shopID
}

// Points 残高を返す
func (b *Balance) Points() int64 {
	return b.points
}

// Version バージョンを返す（楽観的ロック用）
func (b *Balance) Version() int {
	return b.version
}

// Credit ポイントを加算する（0ポイントの加算も許可）
func (b *Balance) Credit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > MaxPoints || b.points > MaxPoints-amount {
		return ErrBalanceOutOfRange
	}
	b.points += amount
	return nil
}

// Debit ポイントを減算する。残高不足の場合は残高を変更せずにエラーを返す
func (b *Balance) Debit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if b.points < amount {
		return ErrInsufficientPoints
	}
	b.points -= amount
	return nil
}

// IncrementVersion 保存成功後にバージョンを進める
func (b *Balance) IncrementVersion() {
	b.version++
}
