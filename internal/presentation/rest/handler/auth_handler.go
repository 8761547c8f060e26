package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authapp "points-server/internal/application/auth"
)

// TokenIssuer 開発用のベアラートークンを発行するもの
type TokenIssuer interface {
	GenerateToken(ctx context.Context, req *authapp.GenerateTokenRequest) (*authapp.GenerateTokenResponse, error)
}

// AuthHandler 認証関連ハンドラー
type AuthHandler struct {
	authService TokenIssuer
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(authService TokenIssuer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GenerateToken トークン生成ハンドラー（管理API用）
// @Summary 認証トークンを生成
// @Description 顧客または店舗のIDとロールを元にJWT認証トークンを生成します
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "アカウントID" example(client-1)
// @Param X-API-Key header string true "APIキー"
// @Param request body GenerateTokenRequest true "トークン生成リクエスト"
// @Success 200 {object} GenerateTokenResponse "トークン生成成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Router /admin/users/{user_id}/issue_token [post]
func (h *AuthHandler) GenerateToken(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var body GenerateTokenRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.authService.GenerateToken(c.Request().Context(), &authapp.GenerateTokenRequest{
		UserID: userID,
		Role:   body.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GenerateTokenResponse{
		Token:     resp.Token,
		ExpiresIn: int(resp.ExpiresIn),
		TokenType: resp.TokenType,
	})
}
