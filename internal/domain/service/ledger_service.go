package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"points-server/internal/domain/account"
	"points-server/internal/domain/points"
	"points-server/internal/domain/transaction"
)

// LedgerEntry 残高変更の結果
type LedgerEntry struct {
	ClientID      string
	ShopID        string
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
}

// LedgerService 顧客×店舗のポイント残高を原子的に増減するドメインサービス
type LedgerService struct {
	balanceRepo points.BalanceRepository
	accounts    account.AccountDirectory
	txManager   transaction.TransactionManager
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// NewLedgerService 新しいLedgerServiceを作成
func NewLedgerService(
	balanceRepo points.BalanceRepository,
	accounts account.AccountDirectory,
	txManager transaction.TransactionManager,
	maxRetries int,
) *LedgerService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &LedgerService{
		balanceRepo: balanceRepo,
		accounts:    accounts,
		txManager:   txManager,
		maxRetries:  maxRetries,
		baseBackoff: 10 * time.Millisecond,
		maxBackoff:  500 * time.Millisecond,
	}
}

// Credit ポイントを加算する。残高行がなければ作成する
func (s *LedgerService) Credit(ctx context.Context, clientID, shopID string, amount int64) (*LedgerEntry, error) {
	if amount < 0 {
		return nil, points.ErrInvalidAmount
	}
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.apply(ctx, clientID, shopID, amount, true, func(b *points.Balance) error {
		return b.Credit(amount)
	})
}

// Debit ポイントを減算する。残高不足の場合はErrInsufficientPointsを返し残高は変更しない
func (s *LedgerService) Debit(ctx context.Context, clientID, shopID string, amount int64) (*LedgerEntry, error) {
	if amount < 0 {
		return nil, points.ErrInvalidAmount
	}
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.apply(ctx, clientID, shopID, amount, false, func(b *points.Balance) error {
		return b.Debit(amount)
	})
}

// Balance 顧客の指定店舗での残高を取得（残高行がなければ0）
func (s *LedgerService) Balance(ctx context.Context, clientID, shopID string) (int64, error) {
	b, err := s.balanceRepo.FindByClientAndShop(ctx, clientID, shopID)
	if errors.Is(err, points.ErrBalanceNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find balance: %w", err)
	}
	return b.Points(), nil
}

// Balances 顧客の店舗別残高を取得
func (s *LedgerService) Balances(ctx context.Context, clientID string) (map[string]int64, error) {
	balances, err := s.balanceRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find balances: %w", err)
	}
	result := make(map[string]int64, len(balances))
	for _, b := range balances {
		result[b.ShopID()] = b.Points()
	}
	return result, nil
}

// ensureClient 顧客の存在確認
func (s *LedgerService) ensureClient(ctx context.Context, clientID string) error {
	exists, err := s.accounts.ClientExists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return account.ErrAccountNotFound
	}
	return nil
}

// apply 読み込み→変更→保存を1トランザクションで行い、楽観的ロック競合時はリトライする
func (s *LedgerService) apply(
	ctx context.Context,
	clientID, shopID string,
	amount int64,
	createIfMissing bool,
	mutate func(*points.Balance) error,
) (*LedgerEntry, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * s.baseBackoff
			if backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var entry *LedgerEntry
		err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			b, err := s.balanceRepo.FindByClientAndShop(ctx, clientID, shopID)
			if errors.Is(err, points.ErrBalanceNotFound) {
				if !createIfMissing && amount > 0 {
					return points.ErrInsufficientPoints
				}
				b, err = points.NewBalance(clientID, shopID, 0, 0)
				if err != nil {
					return err
				}
				if err := s.balanceRepo.Create(ctx, b); err != nil {
					return fmt.Errorf("failed to create balance: %w", err)
				}
				// 同時作成された場合に備えて作成後の行を読み直す
				b, err = s.balanceRepo.FindByClientAndShop(ctx, clientID, shopID)
			}
			if err != nil {
				return fmt.Errorf("failed to find balance: %w", err)
			}

			before := b.Points()
			if err := mutate(b); err != nil {
				return err
			}
			if err := s.balanceRepo.Save(ctx, b); err != nil {
				return err
			}

			entry = &LedgerEntry{
				ClientID:      clientID,
				ShopID:        shopID,
				Amount:        amount,
				BalanceBefore: before,
				BalanceAfter:  b.Points(),
			}
			return nil
		})
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, points.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to apply ledger mutation after %d attempts: %w", s.maxRetries, lastErr)
}
