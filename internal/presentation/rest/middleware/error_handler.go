package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"points-server/internal/domain/account"
	"points-server/internal/domain/catalog"
	"points-server/internal/domain/points"
	"points-server/internal/domain/qr_token"
	"points-server/internal/domain/transaction"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMapping ドメインエラーとHTTPレスポンスの対応
type errorMapping struct {
	target  error
	status  int
	code    string
	message string // 空の場合はerr.Error()を返す
}

// errorMappings 上から順に判定する
var errorMappings = []errorMapping{
	{target: qr_token.ErrTokenRejected, status: http.StatusBadRequest, code: "token_rejected", message: "QR code is invalid, expired or already used"},
	{target: qr_token.ErrInvalidRequest, status: http.StatusBadRequest, code: "invalid_request"},
	{target: qr_token.ErrEmptyPrizeID, status: http.StatusBadRequest, code: "invalid_request"},
	{target: qr_token.ErrInvalidQuantity, status: http.StatusBadRequest, code: "invalid_request"},
	{target: transaction.ErrInvalidTransaction, status: http.StatusBadRequest, code: "invalid_request"},
	{target: account.ErrInvalidAccountID, status: http.StatusBadRequest, code: "invalid_request"},
	{target: account.ErrInvalidRole, status: http.StatusBadRequest, code: "invalid_request"},
	{target: account.ErrRoleNotPermitted, status: http.StatusForbidden, code: "forbidden", message: "This operation is not permitted for your account type"},
	{target: account.ErrPrincipalMissing, status: http.StatusUnauthorized, code: "unauthorized", message: "Authentication required"},
	{target: points.ErrInsufficientPoints, status: http.StatusPaymentRequired, code: "insufficient_points", message: "Not enough points"},
	{target: catalog.ErrProductNotFound, status: http.StatusNotFound, code: "product_not_found"},
	{target: catalog.ErrPrizeNotFound, status: http.StatusNotFound, code: "prize_not_found"},
	{target: catalog.ErrNotOwnedByShop, status: http.StatusNotFound, code: "not_owned_by_shop"},
	{target: account.ErrAccountNotFound, status: http.StatusNotFound, code: "account_not_found"},
	{target: transaction.ErrTransactionNotFound, status: http.StatusNotFound, code: "transaction_not_found"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		logger.Warn(ctx, "Request rejected", map[string]interface{}{
			"code":  m.code,
			"error": err.Error(),
		})
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return c.JSON(m.status, ErrorResponse{
			Error:   m.code,
			Message: message,
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
