package transaction

import (
	"regexp"
	"time"

	"points-server/internal/domain/account"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,64}$`)

// ProductLine 付与対象の商品と数量
type ProductLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Items トランザクションの対象（商品と景品）
type Items struct {
	Products []ProductLine `json:"products"`
	Prizes   []string      `json:"prizes"`
}

// Transaction 監査用トランザクションエンティティ（作成後は変更しない）
type Transaction struct {
	transactionID   string
	issuerID        string
	receiverID      string
	points          int64
	transactionType TransactionType
	status          TransactionStatus
	items           Items
	createdAt       time.Time
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	transactionID string,
	issuerID string,
	receiverID string,
	points int64,
	transactionType TransactionType,
	status TransactionStatus,
	items Items,
	createdAt time.Time,
) (*Transaction, error) {
	if !idRegex.MatchString(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if !account.ValidID(issuerID) || !account.ValidID(receiverID) {
		return nil, ErrInvalidParticipant
	}
	if points < 0 {
		return nil, ErrInvalidPoints
	}
	if !transactionType.Valid() || !status.Valid() {
		return nil, ErrInvalidTransaction
	}
	if items.Products == nil {
		items.Products = []ProductLine{}
	}
	if items.Prizes == nil {
		items.Prizes = []string{}
	}
	return &Transaction{
		transactionID:   transactionID,
		issuerID:        issuerID,
		receiverID:      receiverID,
		points:          points,
		transactionType: transactionType,
		status:          status,
		items:           items,
		createdAt:       createdAt,
	}, nil
}

// TransactionID トランザクションIDを返す
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

// IssuerID 発行者IDを返す
func (t *Transaction) IssuerID() string {
	return t.issuerID
}

// ReceiverID 受領者IDを返す
func (t *Transaction) ReceiverID() string {
	return t.receiverID
}

// Points ポイント数を返す
func (t *Transaction) Points() int64 {
	return t.points
}

// TransactionType トランザクションタイプを返す
func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

// Status ステータスを返す
func (t *Transaction) Status() TransactionStatus {
	return t.status
}

// Items 対象の商品と景品を返す
func (t *Transaction) Items() Items {
	return t.items
}

// CreatedAt 作成日時を返す
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// Involves 指定アカウントが発行者または受領者かどうか
func (t *Transaction) Involves(accountID string) bool {
	return t.issuerID == accountID || t.receiverID == accountID
}

// MustNewTransaction テスト用ヘルパー: NewTransactionを呼び出し、エラーが発生した場合はpanicする
func MustNewTransaction(
	transactionID string,
	issuerID string,
	receiverID string,
	points int64,
	transactionType TransactionType,
	status TransactionStatus,
	items Items,
	createdAt time.Time,
) *Transaction {
	tx, err := NewTransaction(transactionID, issuerID, receiverID, points, transactionType, status, items, createdAt)
	if err != nil {
		panic(err)
	}
	return tx
}
