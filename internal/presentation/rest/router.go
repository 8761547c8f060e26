package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
	"points-server/internal/presentation/rest/handler"
	restmiddleware "points-server/internal/presentation/rest/middleware"
)

// Services ルーターが公開するアプリケーションサービス群
type Services struct {
	TokenTransactions handler.TokenTransactionService
	Balances          handler.BalanceService
	History           handler.HistoryService
	Auth              handler.TokenIssuer
	PendingTokens     handler.PendingCounter
	Sweeper           handler.Sweeper
	QRImages          handler.ImageEncoder
	// MetricsHandler /metrics で公開するハンドラー（nilなら公開しない）
	MetricsHandler http.Handler
}

// Router REST APIルーター
type Router struct {
	echo *echo.Echo
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	services Services,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	setupMiddleware(e, logger, metrics)
	setupRoutes(e, cfg, logger, services)
	SetupSwagger(e)

	return &Router{echo: e}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.TracingMiddleware("points-server"))
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// 最も内側でエラーをJSONに変換する（ログ・メトリクスは変換後のステータスを見る）
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, services Services) {
	qrCodeHandler := handler.NewQRCodeHandler(services.TokenTransactions, services.QRImages)
	balanceHandler := handler.NewBalanceHandler(services.Balances)
	historyHandler := handler.NewHistoryHandler(services.History)
	adminHandler := handler.NewAdminHandler(services.PendingTokens, services.Sweeper)
	authHandler := handler.NewAuthHandler(services.Auth)

	api := e.Group("/api/v1")

	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	// QRコード
	authGroup.POST("/QRCodes/assignPoints", qrCodeHandler.AssignPoints)
	authGroup.POST("/QRCodes/redeemPrize", qrCodeHandler.RedeemPrize)
	authGroup.POST("/QRCodes/scanned", qrCodeHandler.Scanned)

	// 残高
	authGroup.GET("/client/points", balanceHandler.GetClientPoints)
	authGroup.GET("/shops/me/clients/:client_id/points", balanceHandler.GetShopClientPoints)

	// 履歴
	authGroup.GET("/transactions", historyHandler.GetTransactionHistory)

	// 管理API（APIキー認証）
	adminGroup := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	adminGroup.GET("/pending-tokens", adminHandler.GetPendingTokens)
	adminGroup.POST("/pending-tokens/sweep", adminHandler.SweepPendingTokens)
	adminGroup.POST("/users/:user_id/issue_token", authHandler.GenerateToken)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if services.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(services.MetricsHandler))
	}
}

// Handler テストやhttp.Server用のハンドラー
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
