package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// docsCSP Swagger UI / ReDoc用（外部CDNを許可）
	docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline' https://unpkg.com https://fonts.googleapis.com; font-src 'self' https://fonts.gstatic.com; img-src 'self' data: https:; worker-src blob:"
	// apiCSP API用（QRコードのdata URLのみ画像として許可）
	apiCSP = "default-src 'none'; img-src data:; frame-ancestors 'none'"
)

// SecurityHeadersMiddleware セキュリティヘッダーを設定するミドルウェア
func SecurityHeadersMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")

			path := c.Request().URL.Path
			if isDocsPath(path) {
				h.Set("Content-Security-Policy", docsCSP)
			} else {
				h.Set("Content-Security-Policy", apiCSP)
			}
			// トークンを含むレスポンスはキャッシュさせない
			if strings.HasPrefix(path, "/api/") {
				h.Set("Cache-Control", "no-store")
			}

			if c.Scheme() == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}

// isDocsPath APIドキュメント関連のパスかどうか
func isDocsPath(path string) bool {
	return path == "/redoc" || path == "/openapi.yaml" || path == "/swagger" || strings.HasPrefix(path, "/swagger/")
}
