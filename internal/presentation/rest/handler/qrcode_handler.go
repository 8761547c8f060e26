package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/account"
)

// TokenTransactionService QRコードの発行と読み取りを行うもの
type TokenTransactionService interface {
	IssueAssignment(ctx context.Context, principal *account.Principal, req *tokenapp.IssueAssignmentRequest) (*tokenapp.IssueResponse, error)
	IssueRedemption(ctx context.Context, principal *account.Principal, req *tokenapp.IssueRedemptionRequest) (*tokenapp.IssueResponse, error)
	Consume(ctx context.Context, principal *account.Principal, req *tokenapp.ConsumeRequest) (*tokenapp.ConsumeResponse, error)
}

// ImageEncoder トークン文字列をQRコード画像のdata URLにするもの
type ImageEncoder interface {
	DataURL(content string) (string, error)
}

// QRCodeHandler QRコード関連ハンドラー
type QRCodeHandler struct {
	service TokenTransactionService
	encoder ImageEncoder
}

// NewQRCodeHandler 新しいQRCodeHandlerを作成
func NewQRCodeHandler(service TokenTransactionService, encoder ImageEncoder) *QRCodeHandler {
	return &QRCodeHandler{
		service: service,
		encoder: encoder,
	}
}

// AssignPoints ポイント付与QRコード発行ハンドラー
// @Summary ポイント付与QRコードを発行
// @Description 店舗が商品と数量を指定し、顧客に読み取らせるポイント付与QRコードを発行します
// @Tags qrcodes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AssignPointsRequest true "付与対象の商品"
// @Success 201 {object} QRCodeResponse "発行成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 403 {object} middleware.ErrorResponse "店舗以外は発行不可"
// @Router /QRCodes/assignPoints [post]
func (h *QRCodeHandler) AssignPoints(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	var body AssignPointsRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	items := make([]tokenapp.ItemRequest, len(body.Items))
	for i, item := range body.Items {
		items[i] = tokenapp.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	resp, err := h.service.IssueAssignment(c.Request().Context(), principal, &tokenapp.IssueAssignmentRequest{Items: items})
	if err != nil {
		return err
	}
	return h.respondWithQRCode(c, resp)
}

// RedeemPrize 景品交換QRコード発行ハンドラー
// @Summary 景品交換QRコードを発行
// @Description 顧客が景品を指定し、店舗に読み取らせる景品交換QRコードを発行します
// @Tags qrcodes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RedeemPrizeRequest true "交換する景品"
// @Success 201 {object} QRCodeResponse "発行成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 403 {object} middleware.ErrorResponse "顧客以外は発行不可"
// @Router /QRCodes/redeemPrize [post]
func (h *QRCodeHandler) RedeemPrize(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	var body RedeemPrizeRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.IssueRedemption(c.Request().Context(), principal, &tokenapp.IssueRedemptionRequest{PrizeID: body.PrizeID})
	if err != nil {
		return err
	}
	return h.respondWithQRCode(c, resp)
}

// Scanned QRコード読み取りハンドラー
// @Summary QRコードを読み取る
// @Description 付与QRコードは顧客が、交換QRコードは店舗が読み取ります。各トークンは1回だけ成功します
// @Tags qrcodes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ScannedRequest true "読み取ったトークン"
// @Success 200 {object} ScannedResponse "読み取り成功"
// @Failure 400 {object} middleware.ErrorResponse "無効・期限切れ・使用済みのQRコード"
// @Failure 402 {object} middleware.ErrorResponse "ポイント不足"
// @Failure 403 {object} middleware.ErrorResponse "読み取り不可のアカウント種別"
// @Failure 404 {object} middleware.ErrorResponse "商品・景品・顧客が見つからない"
// @Router /QRCodes/scanned [post]
func (h *QRCodeHandler) Scanned(c echo.Context) error {
	principal, err := account.PrincipalFromContext(c.Request().Context())
	if err != nil {
		return err
	}

	var body ScannedRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.Consume(c.Request().Context(), principal, &tokenapp.ConsumeRequest{Token: body.Token})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ScannedResponse{
		TransactionID: resp.TransactionID,
		Kind:          resp.Kind,
		ClientID:      resp.ClientID,
		ShopID:        resp.ShopID,
		Points:        resp.Points,
		BalanceAfter:  resp.BalanceAfter,
	})
}

func (h *QRCodeHandler) respondWithQRCode(c echo.Context, resp *tokenapp.IssueResponse) error {
	dataURL, err := h.encoder.DataURL(resp.Token)
	if err != nil {
		return fmt.Errorf("failed to render QR code: %w", err)
	}

	return c.JSON(http.StatusCreated, QRCodeResponse{
		Token:       resp.Token,
		Kind:        resp.Kind,
		ExpiresAt:   resp.ExpiresAt.UTC().Format(time.RFC3339),
		TotalPoints: resp.TotalPoints,
		QRCode:      dataURL,
	})
}
