package handler

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	balanceapp "points-server/internal/application/balance"
	historyapp "points-server/internal/application/history"
	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/account"
	"points-server/internal/presentation/grpc/pb"
)

// TokenTransactionService QRコードの発行と読み取りを行うもの
type TokenTransactionService interface {
	IssueAssignment(ctx context.Context, principal *account.Principal, req *tokenapp.IssueAssignmentRequest) (*tokenapp.IssueResponse, error)
	IssueRedemption(ctx context.Context, principal *account.Principal, req *tokenapp.IssueRedemptionRequest) (*tokenapp.IssueResponse, error)
	Consume(ctx context.Context, principal *account.Principal, req *tokenapp.ConsumeRequest) (*tokenapp.ConsumeResponse, error)
}

// BalanceService ポイント残高を参照するもの
type BalanceService interface {
	GetClientBalances(ctx context.Context, principal *account.Principal) (*balanceapp.GetClientBalancesResponse, error)
	GetClientBalance(ctx context.Context, principal *account.Principal, req *balanceapp.GetClientBalanceRequest) (*balanceapp.GetClientBalanceResponse, error)
}

// HistoryService トランザクション履歴を参照するもの
type HistoryService interface {
	GetTransactionHistory(ctx context.Context, principal *account.Principal, req *historyapp.GetTransactionHistoryRequest) (*historyapp.GetTransactionHistoryResponse, error)
}

// ImageEncoder トークン文字列をQRコード画像のdata URLにするもの
type ImageEncoder interface {
	DataURL(content string) (string, error)
}

// QRCodeHandler points.v1.QRCodeService の実装
type QRCodeHandler struct {
	tokens   TokenTransactionService
	balances BalanceService
	history  HistoryService
	encoder  ImageEncoder
}

var _ pb.QRCodeServiceServer = (*QRCodeHandler)(nil)

// NewQRCodeHandler 新しいQRCodeHandlerを作成
func NewQRCodeHandler(tokens TokenTransactionService, balances BalanceService, history HistoryService, encoder ImageEncoder) *QRCodeHandler {
	return &QRCodeHandler{
		tokens:   tokens,
		balances: balances,
		history:  history,
		encoder:  encoder,
	}
}

// AssignPoints ポイント付与QRコード発行
func (h *QRCodeHandler) AssignPoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := account.PrincipalFromContext(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	values := req.GetFields()["items"].GetListValue().GetValues()
	items := make([]tokenapp.ItemRequest, 0, len(values))
	for i, v := range values {
		item := v.GetStructValue()
		if item == nil {
			return nil, status.Errorf(codes.InvalidArgument, "items[%d] must be an object", i)
		}
		quantity, err := integerField(item, "quantity")
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "items[%d]: %v", i, err)
		}
		items = append(items, tokenapp.ItemRequest{
			ProductID: stringField(item, "product_id"),
			Quantity:  quantity,
		})
	}

	resp, err := h.tokens.IssueAssignment(ctx, principal, &tokenapp.IssueAssignmentRequest{Items: items})
	if err != nil {
		return nil, ToStatus(err)
	}
	return h.qrCodeResponse(resp)
}

// RedeemPrize 景品交換QRコード発行
func (h *QRCodeHandler) RedeemPrize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := account.PrincipalFromContext(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	resp, err := h.tokens.IssueRedemption(ctx, principal, &tokenapp.IssueRedemptionRequest{
		PrizeID: stringField(req, "prize_id"),
	})
	if err != nil {
		return nil, ToStatus(err)
	}
	return h.qrCodeResponse(resp)
}

// Scan QRコード読み取り
func (h *QRCodeHandler) Scan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := account.PrincipalFromContext(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	resp, err := h.tokens.Consume(ctx, principal, &tokenapp.ConsumeRequest{Token: stringField(req, "token")})
	if err != nil {
		return nil, ToStatus(err)
	}

	return newStruct(map[string]interface{}{
		"transaction_id": resp.TransactionID,
		"kind":           resp.Kind,
		"client_id":      resp.ClientID,
		"shop_id":        resp.ShopID,
		"points":         resp.Points,
		"balance_after":  resp.BalanceAfter,
	})
}

// GetPoints 顧客は店舗別の残高一覧、店舗はclient_idで指定した顧客の残高
func (h *QRCodeHandler) GetPoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := account.PrincipalFromContext(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	if principal.Role().IsMerchant() {
		resp, err := h.balances.GetClientBalance(ctx, principal, &balanceapp.GetClientBalanceRequest{
			ClientID: stringField(req, "client_id"),
		})
		if err != nil {
			return nil, ToStatus(err)
		}
		return newStruct(map[string]interface{}{
			"client_id": resp.ClientID,
			"shop_id":   resp.ShopID,
			"points":    resp.Points,
		})
	}

	resp, err := h.balances.GetClientBalances(ctx, principal)
	if err != nil {
		return nil, ToStatus(err)
	}
	balances := make([]interface{}, len(resp.Balances))
	for i, b := range resp.Balances {
		balances[i] = map[string]interface{}{
			"shop_id": b.ShopID,
			"points":  b.Points,
		}
	}
	return newStruct(map[string]interface{}{
		"client_id": resp.ClientID,
		"balances":  balances,
	})
}

// ListTransactions 呼び出し元が関わるトランザクション履歴
func (h *QRCodeHandler) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := account.PrincipalFromContext(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	limit, err := optionalIntegerField(req, "limit")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	offset, err := optionalIntegerField(req, "offset")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "offset must not be negative")
	}

	resp, err := h.history.GetTransactionHistory(ctx, principal, &historyapp.GetTransactionHistoryRequest{
		Limit:           int(limit),
		Offset:          int(offset),
		TransactionType: stringField(req, "transaction_type"),
	})
	if err != nil {
		return nil, ToStatus(err)
	}

	transactions := make([]interface{}, len(resp.Transactions))
	for i, txn := range resp.Transactions {
		products := make([]interface{}, len(txn.Items.Products))
		for j, p := range txn.Items.Products {
			products[j] = map[string]interface{}{
				"product_id": p.ProductID,
				"quantity":   p.Quantity,
			}
		}
		prizes := make([]interface{}, len(txn.Items.Prizes))
		for j, p := range txn.Items.Prizes {
			prizes[j] = p
		}
		transactions[i] = map[string]interface{}{
			"transaction_id":   txn.TransactionID,
			"issuer_id":        txn.IssuerID,
			"issuer_type":      txn.IssuerRole,
			"receiver_id":      txn.ReceiverID,
			"receiver_type":    txn.ReceiverRole,
			"points":           txn.Points,
			"transaction_type": txn.TransactionType,
			"status":           txn.Status,
			"products":         products,
			"prizes":           prizes,
			"created_at":       txn.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return newStruct(map[string]interface{}{
		"transactions": transactions,
		"total":        resp.Total,
		"limit":        resp.Limit,
		"offset":       resp.Offset,
	})
}

func (h *QRCodeHandler) qrCodeResponse(resp *tokenapp.IssueResponse) (*structpb.Struct, error) {
	dataURL, err := h.encoder.DataURL(resp.Token)
	if err != nil {
		return nil, ToStatus(fmt.Errorf("failed to render QR code: %w", err))
	}

	fields := map[string]interface{}{
		"token":      resp.Token,
		"kind":       resp.Kind,
		"expires_at": resp.ExpiresAt.UTC().Format(time.RFC3339),
		"qr_code":    dataURL,
	}
	if resp.TotalPoints > 0 {
		fields["total_points"] = resp.TotalPoints
	}
	return newStruct(fields)
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	return s, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// integerField 整数値のフィールドを取得（JSON同様に数値はdoubleで届く）
func integerField(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	f := num.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int64(f), nil
}

// optionalIntegerField 省略時は0
func optionalIntegerField(s *structpb.Struct, key string) (int64, error) {
	if _, ok := s.GetFields()[key]; !ok {
		return 0, nil
	}
	return integerField(s, key)
}
