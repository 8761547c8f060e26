package balance

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/account"
	"points-server/internal/domain/service"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// BalanceApplicationService 残高照会アプリケーションサービス
type BalanceApplicationService struct {
	ledger   *service.LedgerService
	accounts account.AccountDirectory
	logger   *otelinfra.Logger
	tracer   trace.Tracer
}

// NewBalanceApplicationService 新しいBalanceApplicationServiceを作成
func NewBalanceApplicationService(
	ledger *service.LedgerService,
	accounts account.AccountDirectory,
	logger *otelinfra.Logger,
) *BalanceApplicationService {
	return &BalanceApplicationService{
		ledger:   ledger,
		accounts: accounts,
		logger:   logger,
		tracer:   otel.Tracer("balance-service"),
	}
}

// GetClientBalances 顧客が自分の店舗別残高を取得
func (s *BalanceApplicationService) GetClientBalances(ctx context.Context, principal *account.Principal) (*GetClientBalancesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BalanceApplicationService.GetClientBalances")
	defer span.End()

	if err := principal.Require(account.RoleClient); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("client_id", principal.ID()))

	byShop, err := s.ledger.Balances(ctx, principal.ID())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get balances", err, map[string]interface{}{
			"client_id": principal.ID(),
		})
		return nil, err
	}

	balances := make([]ShopBalance, 0, len(byShop))
	for shopID, pts := range byShop {
		balances = append(balances, ShopBalance{ShopID: shopID, Points: pts})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].ShopID < balances[j].ShopID
	})

	return &GetClientBalancesResponse{
		ClientID: principal.ID(),
		Balances: balances,
	}, nil
}

// GetClientBalance 店舗が自店舗での顧客の残高を取得
func (s *BalanceApplicationService) GetClientBalance(ctx context.Context, principal *account.Principal, req *GetClientBalanceRequest) (*GetClientBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BalanceApplicationService.GetClientBalance")
	defer span.End()

	if err := principal.Require(account.RoleMerchant); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("shop_id", principal.ID()),
		attribute.String("client_id", req.ClientID),
	)

	exists, err := s.accounts.ClientExists(ctx, req.ClientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		span.SetStatus(otelcodes.Error, account.ErrAccountNotFound.Error())
		return nil, account.ErrAccountNotFound
	}

	pts, err := s.ledger.Balance(ctx, req.ClientID, principal.ID())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return &GetClientBalanceResponse{
		ClientID: req.ClientID,
		ShopID:   principal.ID(),
		Points:   pts,
	}, nil
}
