package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	balanceapp "points-server/internal/application/balance"
	historyapp "points-server/internal/application/history"
	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/account"
)

// MockTokenTransactionService モックトークン取引サービス
type MockTokenTransactionService struct {
	mock.Mock
}

func (m *MockTokenTransactionService) IssueAssignment(ctx context.Context, principal *account.Principal, req *tokenapp.IssueAssignmentRequest) (*tokenapp.IssueResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenapp.IssueResponse), args.Error(1)
}

func (m *MockTokenTransactionService) IssueRedemption(ctx context.Context, principal *account.Principal, req *tokenapp.IssueRedemptionRequest) (*tokenapp.IssueResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenapp.IssueResponse), args.Error(1)
}

func (m *MockTokenTransactionService) Consume(ctx context.Context, principal *account.Principal, req *tokenapp.ConsumeRequest) (*tokenapp.ConsumeResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenapp.ConsumeResponse), args.Error(1)
}

// MockBalanceService モック残高サービス
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetClientBalances(ctx context.Context, principal *account.Principal) (*balanceapp.GetClientBalancesResponse, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balanceapp.GetClientBalancesResponse), args.Error(1)
}

func (m *MockBalanceService) GetClientBalance(ctx context.Context, principal *account.Principal, req *balanceapp.GetClientBalanceRequest) (*balanceapp.GetClientBalanceResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balanceapp.GetClientBalanceResponse), args.Error(1)
}

// MockHistoryService モック履歴サービス
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetTransactionHistory(ctx context.Context, principal *account.Principal, req *historyapp.GetTransactionHistoryRequest) (*historyapp.GetTransactionHistoryResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyapp.GetTransactionHistoryResponse), args.Error(1)
}

// stubEncoder 固定のdata URLを返すエンコーダー
type stubEncoder struct{}

func (stubEncoder) DataURL(content string) (string, error) {
	return "data:image/png;base64,stub", nil
}
