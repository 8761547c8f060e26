package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// MetricsMiddleware リクエスト数・レスポンス時間・エラー数を記録するミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			ctx := c.Request().Context()
			method := c.Request().Method
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.RecordRequest(ctx, method, route)
			metrics.RecordResponseTime(ctx, method, route, time.Since(start).Seconds())

			if errorType := classifyStatus(statusOf(c, err)); errorType != "" {
				metrics.RecordError(ctx, errorType)
			}

			return err
		}
	}
}

// statusOf 返されたエラーを考慮したステータスコード
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	if c.Response().Committed {
		return c.Response().Status
	}
	return http.StatusInternalServerError
}

// classifyStatus 4xxはclient_error、5xxはserver_error、それ以外は空文字
func classifyStatus(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return ""
	}
}
