package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"points-server/internal/domain/account"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// LoggingMiddleware リクエストごとに1行のアクセスログを出力する
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
			}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}
			// 認証済みの場合は呼び出し元を付与（ミドルウェアの順序によってはnextの後に設定される）
			if p, perr := account.PrincipalFromContext(req.Context()); perr == nil {
				fields["account_id"] = p.ID()
				fields["role"] = p.Role().String()
			}

			switch {
			case err != nil:
				logger.Error(req.Context(), "HTTP request failed", err, fields)
			case c.Response().Status >= 500:
				logger.Error(req.Context(), "HTTP request completed with server error", nil, fields)
			default:
				logger.Info(req.Context(), "HTTP request completed", fields)
			}

			return err
		}
	}
}
