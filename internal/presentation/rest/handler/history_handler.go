package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	historyapp "points-server/internal/application/history"
	"points-server/internal/domain/account"
)

// HistoryService トランザクション履歴を参照するもの
type HistoryService interface {
	GetTransactionHistory(ctx context.Context, principal *account.Principal, req *historyapp.GetTransactionHistoryRequest) (*historyapp.GetTransactionHistoryResponse, error)
}

// HistoryHandler 履歴関連ハンドラー
type HistoryHandler struct {
	historyService HistoryService
}

// NewHistoryHandler 新しいHistoryHandlerを作成
func NewHistoryHandler(historyService HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GetTransactionHistory トランザクション履歴取得ハンドラー
// @Summary トランザクション履歴を取得
// @Description 自分が発行者または受領者であるトランザクションを新しい順に取得します
// @Tags history
// @Produce json
// @Security Bearer
// @Param limit query int false "取得件数（デフォルト: 50, 最大: 100)" default(50) example(50)
// @Param offset query int false "オフセット（デフォルト: 0)" default(0) example(0)
// @Param transaction_type query string false "トランザクションタイプでフィルタ（point_assignment/prize_redeem）" example(point_assignment)
// @Success 200 {object} TransactionHistoryResponse "履歴取得成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Router /transactions [get]
func (h *HistoryHandler) GetTransactionHistory(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit parameter")
		}
	}

	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset parameter")
		}
	}

	resp, err := h.historyService.GetTransactionHistory(c.Request().Context(), principal, &historyapp.GetTransactionHistoryRequest{
		Limit:           limit,
		Offset:          offset,
		TransactionType: c.QueryParam("transaction_type"),
	})
	if err != nil {
		return err
	}

	transactions := make([]TransactionItem, len(resp.Transactions))
	for i, txn := range resp.Transactions {
		products := make([]TransactionProduct, len(txn.Items.Products))
		for j, p := range txn.Items.Products {
			products[j] = TransactionProduct{ProductID: p.ProductID, Quantity: p.Quantity}
		}
		prizes := txn.Items.Prizes
		if prizes == nil {
			prizes = []string{}
		}
		transactions[i] = TransactionItem{
			TransactionID:   txn.TransactionID,
			IssuerID:        txn.IssuerID,
			IssuerType:      txn.IssuerRole,
			ReceiverID:      txn.ReceiverID,
			ReceiverType:    txn.ReceiverRole,
			Points:          txn.Points,
			TransactionType: txn.TransactionType,
			Status:          txn.Status,
			Products:        products,
			Prizes:          prizes,
			CreatedAt:       txn.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, TransactionHistoryResponse{
		Transactions: transactions,
		Total:        resp.Total,
		Limit:        resp.Limit,
		Offset:       resp.Offset,
	})
}
