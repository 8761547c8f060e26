package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"points-server/internal/application/auth"
	"points-server/internal/domain/account"
	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// AuthMiddleware JWT認証ミドルウェア。検証済みのPrincipalをリクエストコンテキストに設定する
func AuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				logger.Warn(ctx, "Missing authorization header", nil)
				return unauthorized(c, "Missing authorization header")
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || scheme != "Bearer" || tokenString == "" {
				logger.Warn(ctx, "Invalid authorization header format", nil)
				return unauthorized(c, "Invalid authorization header format")
			}

			principal, err := auth.ParseBearerToken(cfg, tokenString)
			if err != nil {
				logger.Warn(ctx, "Invalid token", map[string]interface{}{
					"error": err.Error(),
				})
				return unauthorized(c, "Invalid or expired token")
			}

			c.SetRequest(c.Request().WithContext(account.WithPrincipal(ctx, principal)))
			c.Set("user_id", principal.ID())
			c.Set("role", principal.Role().String())

			return next(c)
		}
	}
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}
