package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"points-server/internal/domain/account"
	"points-server/internal/domain/service"
	otelinfra "points-server/internal/infrastructure/observability/otel"
	"points-server/internal/infrastructure/persistence/memory"
)

func newTestService(t *testing.T) (*BalanceApplicationService, *service.LedgerService) {
	t.Helper()
	cat, err := memory.NewCatalog(nil)
	require.NoError(t, err)
	cat.AddClient("client-1")
	cat.AddClient("client-2")

	ledger := service.NewLedgerService(memory.NewBalanceRepository(), cat, memory.NewTransactionManager(), 3)
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	return NewBalanceApplicationService(ledger, cat, logger), ledger
}

func TestBalanceApplicationService_GetClientBalances(t *testing.T) {
	svc, ledger := newTestService(t)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "client-1", "shop-b", 5)
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, "client-1", "shop-a", 20)
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, "client-2", "shop-a", 99)
	require.NoError(t, err)

	tests := []struct {
		name      string
		principal *account.Principal
		want      []ShopBalance
		wantErr   error
	}{
		{
			name:      "正常系: 店舗ID順の残高",
			principal: account.MustNewPrincipal("client-1", account.RoleClient),
			want:      []ShopBalance{{ShopID: "shop-a", Points: 20}, {ShopID: "shop-b", Points: 5}},
		},
		{
			name:      "正常系: 残高なし",
			principal: account.MustNewPrincipal("client-3", account.RoleClient),
			want:      []ShopBalance{},
		},
		{
			name:      "異常系: 店舗は照会できない",
			principal: account.MustNewPrincipal("shop-a", account.RoleMerchant),
			wantErr:   account.ErrRoleNotPermitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetClientBalances(ctx, tt.principal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.principal.ID(), got.ClientID)
			assert.Equal(t, tt.want, got.Balances)
		})
	}
}

func TestBalanceApplicationService_GetClientBalance(t *testing.T) {
	svc, ledger := newTestService(t)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "client-1", "shop-a", 42)
	require.NoError(t, err)

	shopA := account.MustNewPrincipal("shop-a", account.RoleMerchant)
	shopB := account.MustNewPrincipal("shop-b", account.RoleMerchant)

	tests := []struct {
		name      string
		principal *account.Principal
		clientID  string
		want      int64
		wantErr   error
	}{
		{
			name:      "正常系: 自店舗の残高",
			principal: shopA,
			clientID:  "client-1",
			want:      42,
		},
		{
			name:      "正常系: 他店舗の残高は見えない",
			principal: shopB,
			clientID:  "client-1",
			want:      0,
		},
		{
			name:      "異常系: 存在しない顧客",
			principal: shopA,
			clientID:  "client-9",
			wantErr:   account.ErrAccountNotFound,
		},
		{
			name:      "異常系: 顧客は照会できない",
			principal: account.MustNewPrincipal("client-1", account.RoleClient),
			clientID:  "client-1",
			wantErr:   account.ErrRoleNotPermitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetClientBalance(ctx, tt.principal, &GetClientBalanceRequest{ClientID: tt.clientID})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Points)
			assert.Equal(t, tt.principal.ID(), got.ShopID)
		})
	}
}
