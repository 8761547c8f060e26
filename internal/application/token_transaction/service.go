package token_transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/application/recorder"
	"points-server/internal/domain/account"
	"points-server/internal/domain/catalog"
	"points-server/internal/domain/points"
	"points-server/internal/domain/qr_token"
	"points-server/internal/domain/service"
	"points-server/internal/domain/transaction"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// Ledger 残高の増減
type Ledger interface {
	Credit(ctx context.Context, clientID, shopID string, amount int64) (*service.LedgerEntry, error)
	Debit(ctx context.Context, clientID, shopID string, amount int64) (*service.LedgerEntry, error)
}

// Recorder 監査用トランザクションの記録
type Recorder interface {
	Record(ctx context.Context, entry recorder.Entry) (string, error)
}

// TokenTransactionApplicationService QRトークンの発行と読み取りを行うアプリケーションサービス
type TokenTransactionApplicationService struct {
	codec       qr_token.Codec
	registry    qr_token.Registry
	catalogRepo catalog.CatalogRepository
	ledger      Ledger
	recorder    Recorder
	ttl         time.Duration
	maxTokenLen int
	now         func() time.Time
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewTokenTransactionApplicationService 新しいTokenTransactionApplicationServiceを作成
func NewTokenTransactionApplicationService(
	codec qr_token.Codec,
	registry qr_token.Registry,
	catalogRepo catalog.CatalogRepository,
	ledger Ledger,
	recorder Recorder,
	ttl time.Duration,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *TokenTransactionApplicationService {
	return &TokenTransactionApplicationService{
		codec:       codec,
		registry:    registry,
		catalogRepo: catalogRepo,
		ledger:      ledger,
		recorder:    recorder,
		ttl:         ttl,
		maxTokenLen: qr_token.MaxRawLength,
		now:         time.Now,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer("token-transaction-service"),
	}
}

// IssueAssignment 店舗が顧客にポイントを付与するトークンを発行
func (s *TokenTransactionApplicationService) IssueAssignment(ctx context.Context, principal *account.Principal, req *IssueAssignmentRequest) (*IssueResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TokenTransactionApplicationService.IssueAssignment")
	defer span.End()

	if err := principal.Require(account.RoleMerchant); err != nil {
		return nil, s.fail(span, err)
	}
	shopID := principal.ID()
	span.SetAttributes(
		attribute.String("shop_id", shopID),
		attribute.Int("item_count", len(req.Items)),
	)

	if err := req.Validate(); err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %v", qr_token.ErrInvalidRequest, err))
	}

	items := make([]qr_token.Item, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		perUnit, err := s.pointsPerUnit(ctx, item.ProductID)
		if err != nil {
			return nil, s.fail(span, err)
		}
		if perUnit > 0 && item.Quantity > points.MaxPoints/perUnit {
			return nil, s.fail(span, fmt.Errorf("%w: points overflow", qr_token.ErrInvalidRequest))
		}
		line := perUnit * item.Quantity
		if total > points.MaxPoints-line {
			return nil, s.fail(span, fmt.Errorf("%w: points overflow", qr_token.ErrInvalidRequest))
		}
		total += line
		items = append(items, qr_token.Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	payload, err := qr_token.NewAssignment(shopID, items, total)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %v", qr_token.ErrInvalidRequest, err))
	}

	resp, err := s.issue(ctx, payload)
	if err != nil {
		return nil, s.fail(span, err)
	}
	resp.TotalPoints = total

	s.logger.Info(ctx, "Assignment token issued", map[string]interface{}{
		"shop_id":      shopID,
		"item_count":   len(items),
		"total_points": total,
		"expires_at":   resp.ExpiresAt,
	})

	return resp, nil
}

// IssueRedemption 顧客が景品交換用のトークンを発行（残高はこの時点では確認しない）
func (s *TokenTransactionApplicationService) IssueRedemption(ctx context.Context, principal *account.Principal, req *IssueRedemptionRequest) (*IssueResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TokenTransactionApplicationService.IssueRedemption")
	defer span.End()

	if err := principal.Require(account.RoleClient); err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(
		attribute.String("client_id", principal.ID()),
		attribute.String("prize_id", req.PrizeID),
	)

	payload, err := qr_token.NewRedemption(req.PrizeID, principal.ID())
	if err != nil {
		return nil, s.fail(span, err)
	}

	resp, err := s.issue(ctx, payload)
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.logger.Info(ctx, "Redemption token issued", map[string]interface{}{
		"client_id":  principal.ID(),
		"prize_id":   payload.PrizeID,
		"expires_at": resp.ExpiresAt,
	})

	return resp, nil
}

// Consume トークンを読み取り、ポイントの付与または減算を行う
func (s *TokenTransactionApplicationService) Consume(ctx context.Context, principal *account.Principal, req *ConsumeRequest) (*ConsumeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TokenTransactionApplicationService.Consume")
	defer span.End()

	if principal == nil {
		return nil, s.fail(span, account.ErrRoleNotPermitted)
	}
	span.SetAttributes(
		attribute.String("account_id", principal.ID()),
		attribute.String("role", principal.Role().String()),
	)

	tok, err := s.codec.Verify(req.Token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, qr_token.ErrTokenExpired) {
			reason = "expired"
		}
		return nil, s.reject(ctx, span, reason, err)
	}

	pending, err := s.registry.IsPending(ctx, tok.Raw())
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to check pending token: %w", err))
	}
	if !pending {
		return nil, s.reject(ctx, span, "not_pending", nil)
	}

	span.SetAttributes(attribute.String("kind", tok.Kind().String()))

	switch p := tok.Payload().(type) {
	case *qr_token.Assignment:
		return s.consumeAssignment(ctx, span, principal, tok, p)
	case *qr_token.Redemption:
		return s.consumeRedemption(ctx, span, principal, tok, p)
	default:
		return nil, s.reject(ctx, span, "invalid", fmt.Errorf("unexpected payload %T", p))
	}
}

// consumeAssignment 顧客が付与トークンを読み取る
func (s *TokenTransactionApplicationService) consumeAssignment(
	ctx context.Context,
	span trace.Span,
	principal *account.Principal,
	tok *qr_token.Token,
	p *qr_token.Assignment,
) (*ConsumeResponse, error) {
	if err := principal.Require(account.RoleClient); err != nil {
		return nil, s.fail(span, err)
	}
	clientID := principal.ID()

	lines := make([]transaction.ProductLine, 0, len(p.Items))
	for _, item := range p.Items {
		product, err := s.catalogRepo.FindProduct(ctx, item.ProductID)
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("failed to find product %s: %w", item.ProductID, err))
		}
		if !product.BelongsTo(p.ShopID) {
			return nil, s.fail(span, fmt.Errorf("product %s: %w", item.ProductID, catalog.ErrNotOwnedByShop))
		}
		lines = append(lines, transaction.ProductLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	if err := s.claim(ctx, span, tok); err != nil {
		return nil, err
	}

	entry := recorder.Entry{
		IssuerID:   p.ShopID,
		ReceiverID: clientID,
		Points:     p.TotalPoints,
		Type:       transaction.TransactionTypePointAssignment,
		Items:      transaction.Items{Products: lines},
	}

	result, err := s.ledger.Credit(ctx, clientID, p.ShopID, p.TotalPoints)
	if err != nil {
		s.restore(ctx, tok)
		s.recordFailure(ctx, entry, err)
		return nil, s.fail(span, fmt.Errorf("failed to credit points: %w", err))
	}

	s.metrics.RecordPointsCredited(ctx, p.ShopID, p.TotalPoints)
	return s.complete(ctx, span, tok, entry, result), nil
}

// consumeRedemption 店舗が景品交換トークンを読み取る
func (s *TokenTransactionApplicationService) consumeRedemption(
	ctx context.Context,
	span trace.Span,
	principal *account.Principal,
	tok *qr_token.Token,
	p *qr_token.Redemption,
) (*ConsumeResponse, error) {
	if err := principal.Require(account.RoleMerchant); err != nil {
		return nil, s.fail(span, err)
	}
	shopID := principal.ID()

	prize, err := s.catalogRepo.FindPrize(ctx, p.PrizeID)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to find prize %s: %w", p.PrizeID, err))
	}
	if !prize.BelongsTo(shopID) {
		return nil, s.fail(span, fmt.Errorf("prize %s: %w", p.PrizeID, catalog.ErrNotOwnedByShop))
	}

	if err := s.claim(ctx, span, tok); err != nil {
		return nil, err
	}

	entry := recorder.Entry{
		IssuerID:   p.ClientID,
		ReceiverID: shopID,
		Points:     prize.Cost(),
		Type:       transaction.TransactionTypePrizeRedeem,
		Items:      transaction.Items{Prizes: []string{p.PrizeID}},
	}

	result, err := s.ledger.Debit(ctx, p.ClientID, shopID, prize.Cost())
	if err != nil {
		s.restore(ctx, tok)
		s.recordFailure(ctx, entry, err)
		return nil, s.fail(span, fmt.Errorf("failed to debit points: %w", err))
	}

	s.metrics.RecordPointsDebited(ctx, shopID, prize.Cost())
	return s.complete(ctx, span, tok, entry, result), nil
}

// issue 署名してレジストリに登録
func (s *TokenTransactionApplicationService) issue(ctx context.Context, payload qr_token.Payload) (*IssueResponse, error) {
	tok, err := s.codec.Issue(payload, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	// QRコードにできないトークンは登録しない
	if len(tok.Raw()) > s.maxTokenLen {
		return nil, fmt.Errorf("%w: token length %d exceeds %d", qr_token.ErrInvalidRequest, len(tok.Raw()), s.maxTokenLen)
	}
	if err := s.registry.Register(ctx, tok.Raw(), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to register token: %w", err)
	}

	s.metrics.RecordTokenIssued(ctx, tok.Kind().String())

	return &IssueResponse{
		Token:     tok.Raw(),
		Kind:      tok.Kind().String(),
		ExpiresAt: tok.ExpiresAt(),
	}, nil
}

// pointsPerUnit 商品の1個あたりのポイント（未登録の商品は0）
func (s *TokenTransactionApplicationService) pointsPerUnit(ctx context.Context, productID string) (int64, error) {
	product, err := s.catalogRepo.FindProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	return product.PointsPerUnit(), nil
}

// claim レジストリからトークンを取り除く。同時に読み取られた場合は1つだけが成功する
func (s *TokenTransactionApplicationService) claim(ctx context.Context, span trace.Span, tok *qr_token.Token) error {
	claimed, err := s.registry.Retire(ctx, tok.Raw())
	if err != nil {
		return s.fail(span, fmt.Errorf("failed to retire token: %w", err))
	}
	if !claimed {
		return s.reject(ctx, span, "already_used", nil)
	}
	return nil
}

// restore 残高変更に失敗したトークンを残りの有効期間で保留状態に戻す
func (s *TokenTransactionApplicationService) restore(ctx context.Context, tok *qr_token.Token) {
	ttl := tok.RemainingTTL(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.registry.Register(context.WithoutCancel(ctx), tok.Raw(), ttl); err != nil {
		s.logger.Error(ctx, "Failed to restore pending token", err, map[string]interface{}{
			"kind":       tok.Kind().String(),
			"expires_at": tok.ExpiresAt(),
		})
	}
}

// complete 成功時の記録とレスポンス作成
func (s *TokenTransactionApplicationService) complete(
	ctx context.Context,
	span trace.Span,
	tok *qr_token.Token,
	entry recorder.Entry,
	result *service.LedgerEntry,
) *ConsumeResponse {
	entry.Status = transaction.TransactionStatusSuccess
	transactionID, err := s.recorder.Record(ctx, entry)
	if err != nil {
		s.logger.Error(ctx, "Failed to record transaction", err, map[string]interface{}{
			"transaction_type": entry.Type.String(),
			"client_id":        result.ClientID,
			"shop_id":          result.ShopID,
		})
	}

	s.metrics.RecordTokenConsumed(ctx, tok.Kind().String())
	span.SetAttributes(attribute.String("transaction_id", transactionID))
	span.SetStatus(otelcodes.Ok, "")

	s.logger.Info(ctx, "Token consumed", map[string]interface{}{
		"transaction_id": transactionID,
		"kind":           tok.Kind().String(),
		"client_id":      result.ClientID,
		"shop_id":        result.ShopID,
		"points":         result.Amount,
		"balance_after":  result.BalanceAfter,
	})

	return &ConsumeResponse{
		TransactionID: transactionID,
		Kind:          tok.Kind().String(),
		ClientID:      result.ClientID,
		ShopID:        result.ShopID,
		Points:        result.Amount,
		BalanceAfter:  result.BalanceAfter,
	}
}

// recordFailure 失敗したトランザクションを記録
func (s *TokenTransactionApplicationService) recordFailure(ctx context.Context, entry recorder.Entry, cause error) {
	entry.Status = transaction.TransactionStatusFailure
	transactionID, err := s.recorder.Record(ctx, entry)
	if err != nil {
		s.logger.Error(ctx, "Failed to record failed transaction", err, map[string]interface{}{
			"transaction_type": entry.Type.String(),
		})
	}
	s.logger.Warn(ctx, "Token transaction failed", map[string]interface{}{
		"transaction_id":   transactionID,
		"transaction_type": entry.Type.String(),
		"issuer_id":        entry.IssuerID,
		"receiver_id":      entry.ReceiverID,
		"points":           entry.Points,
		"cause":            cause.Error(),
	})
}

// reject トークンを拒否。失敗理由の詳細は呼び出し元に返さない
func (s *TokenTransactionApplicationService) reject(ctx context.Context, span trace.Span, reason string, cause error) error {
	s.metrics.RecordTokenRejected(ctx, reason)
	fields := map[string]interface{}{"reason": reason}
	if cause != nil {
		fields["cause"] = cause.Error()
	}
	s.logger.Info(ctx, "Token rejected", fields)
	return s.fail(span, qr_token.ErrTokenRejected)
}

// fail スパンにエラーを記録して返す
func (s *TokenTransactionApplicationService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}
