package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace/noop"

	balanceapp "points-server/internal/application/balance"
	historyapp "points-server/internal/application/history"
	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/account"
	otelinfra "points-server/internal/infrastructure/observability/otel"
	restmiddleware "points-server/internal/presentation/rest/middleware"
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

// MockPendingCounter モック保留トークン数
type MockPendingCounter struct {
	mock.Mock
}

func (m *MockPendingCounter) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSweeper モック掃除
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOnce(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

// newTestEcho エラーハンドリングミドルウェアと呼び出し元を設定したEchoを作成
func newTestEcho(principal *account.Principal) *echo.Echo {
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	e := echo.New()
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	if principal != nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.SetRequest(c.Request().WithContext(account.WithPrincipal(c.Request().Context(), principal)))
				return next(c)
			}
		})
	}
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mustPrincipal(t *testing.T, id string, role account.Role) *account.Principal {
	t.Helper()
	p, err := account.NewPrincipal(id, role)
	if err != nil {
		t.Fatalf("NewPrincipal: %v", err)
	}
	return p
}
