package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	balanceapp "points-server/internal/application/balance"
	"points-server/internal/domain/account"
)

// BalanceService ポイント残高を参照するもの
type BalanceService interface {
	GetClientBalances(ctx context.Context, principal *account.Principal) (*balanceapp.GetClientBalancesResponse, error)
	GetClientBalance(ctx context.Context, principal *account.Principal, req *balanceapp.GetClientBalanceRequest) (*balanceapp.GetClientBalanceResponse, error)
}

// BalanceHandler 残高関連ハンドラー
type BalanceHandler struct {
	balanceService BalanceService
}

// NewBalanceHandler 新しいBalanceHandlerを作成
func NewBalanceHandler(balanceService BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetClientPoints 顧客の店舗別残高取得ハンドラー
// @Summary 自分のポイント残高を取得
// @Description 顧客が店舗ごとのポイント残高を取得します
// @Tags points
// @Produce json
// @Security Bearer
// @Success 200 {object} ClientPointsResponse "取得成功"
// @Failure 403 {object} middleware.ErrorResponse "顧客以外は参照不可"
// @Router /client/points [get]
func (h *BalanceHandler) GetClientPoints(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	resp, err := h.balanceService.GetClientBalances(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	balances := make([]ShopPoints, len(resp.Balances))
	for i, b := range resp.Balances {
		balances[i] = ShopPoints{ShopID: b.ShopID, Points: b.Points}
	}
	return c.JSON(http.StatusOK, ClientPointsResponse{
		ClientID: resp.ClientID,
		Balances: balances,
	})
}

// GetShopClientPoints 店舗における顧客の残高取得ハンドラー
// @Summary 顧客のポイント残高を取得（店舗用）
// @Description 店舗が自店舗における顧客のポイント残高を取得します
// @Tags points
// @Produce json
// @Security Bearer
// @Param client_id path string true "顧客ID" example(client-1)
// @Success 200 {object} ShopClientPointsResponse "取得成功"
// @Failure 403 {object} middleware.ErrorResponse "店舗以外は参照不可"
// @Failure 404 {object} middleware.ErrorResponse "顧客が見つからない"
// @Router /shops/me/clients/{client_id}/points [get]
func (h *BalanceHandler) GetShopClientPoints(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	resp, err := h.balanceService.GetClientBalance(c.Request().Context(), principal, &balanceapp.GetClientBalanceRequest{
		ClientID: c.Param("client_id"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ShopClientPointsResponse{
		ClientID: resp.ClientID,
		ShopID:   resp.ShopID,
		Points:   resp.Points,
	})
}
