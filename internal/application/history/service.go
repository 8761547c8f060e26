package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/account"
	"points-server/internal/domain/transaction"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// HistoryApplicationService 履歴アプリケーションサービス
type HistoryApplicationService struct {
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	tracer          trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		transactionRepo: transactionRepo,
		logger:          logger,
		tracer:          otel.Tracer("history-service"),
	}
}

// GetTransactionHistory 呼び出し元が発行者または受領者のトランザクション履歴を取得
func (s *HistoryApplicationService) GetTransactionHistory(ctx context.Context, principal *account.Principal, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTransactionHistory")
	defer span.End()

	if principal == nil {
		err := account.ErrPrincipalMissing
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// バリデーション
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	var filter transaction.TransactionType
	if req.TransactionType != "" {
		t, err := transaction.NewTransactionType(req.TransactionType)
		if err != nil {
			err = fmt.Errorf("%w: %v", transaction.ErrInvalidTransaction, err)
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		filter = t
	}

	span.SetAttributes(
		attribute.String("account_id", principal.ID()),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	s.logger.Info(ctx, "Getting transaction history", map[string]interface{}{
		"account_id":       principal.ID(),
		"role":             principal.Role().String(),
		"limit":            req.Limit,
		"offset":           req.Offset,
		"transaction_type": req.TransactionType,
	})

	transactions, err := s.transactionRepo.FindByParticipant(ctx, principal.ID(), req.Limit, req.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get transaction history", err, map[string]interface{}{
			"account_id": principal.ID(),
		})
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	total, err := s.transactionRepo.CountByParticipant(ctx, principal.ID())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to count transaction history: %w", err)
	}

	views := make([]TransactionView, 0, len(transactions))
	for _, txn := range transactions {
		// タイプフィルタ（ページ内で適用）
		if filter != "" && txn.TransactionType() != filter {
			continue
		}
		views = append(views, toView(txn))
	}

	return &GetTransactionHistoryResponse{
		Transactions: views,
		Total:        total,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}

func toView(txn *transaction.Transaction) TransactionView {
	return TransactionView{
		TransactionID:   txn.TransactionID(),
		IssuerID:        txn.IssuerID(),
		IssuerRole:      txn.TransactionType().IssuerRole().String(),
		ReceiverID:      txn.ReceiverID(),
		ReceiverRole:    txn.TransactionType().ReceiverRole().String(),
		Points:          txn.Points(),
		TransactionType: txn.TransactionType().String(),
		Status:          txn.Status().String(),
		Items:           txn.Items(),
		CreatedAt:       txn.CreatedAt(),
	}
}
