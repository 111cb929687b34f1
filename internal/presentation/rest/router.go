package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"mint-server/internal/infrastructure/config"
	otelinfra "mint-server/internal/infrastructure/observability/otel"
	"mint-server/internal/presentation/rest/handler"
	restmiddleware "mint-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HealthChecker 依存サービスの疎通確認
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Router REST APIルーター
type Router struct {
	echo        *echo.Echo
	cfg         *config.ServerConfig
	mintHandler *handler.MintHandler
	gemsHandler *handler.GemsHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	health HealthChecker,
	mintService handler.MintService,
	gemsService handler.GemsService,
) (*Router, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Echoのデフォルトエラーハンドラーを無効化（エラーハンドリングミドルウェアで処理される）
	e.HTTPErrorHandler = func(err error, c echo.Context) {}

	setupMiddleware(e, logger, metrics)

	mintHandler := handler.NewMintHandler(mintService)
	gemsHandler := handler.NewGemsHandler(gemsService)

	setupRoutes(e, cfg, logger, health, mintHandler, gemsHandler)

	return &Router{
		echo:        e,
		cfg:         &cfg.Server,
		mintHandler: mintHandler,
		gemsHandler: gemsHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	if metrics != nil {
		e.Use(restmiddleware.MetricsMiddleware(metrics))
	}
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	health HealthChecker,
	mintHandler *handler.MintHandler,
	gemsHandler *handler.GemsHandler,
) {
	// 管理API（JWT認証。管理者権限はアプリケーション層で判定）
	admin := e.Group("/api/v1/admin", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	admin.POST("/mint/:period", mintHandler.Mint)
	admin.GET("/mint/account", mintHandler.GetMintAccount)
	admin.GET("/mint/history", mintHandler.MintHistory)

	admin.POST("/gems/generate", gemsHandler.Generate)
	admin.GET("/gems/stats", gemsHandler.Stats)
	admin.GET("/gems/:period", gemsHandler.ForPeriod)

	// ヘルスチェック（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if health != nil {
			if err := health.HealthCheck(c.Request().Context()); err != nil {
				logger.Error(c.Request().Context(), "Health check failed", err, nil)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler HTTPハンドラーを返す
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	r.echo.Server.ReadTimeout = r.cfg.ReadTimeout
	r.echo.Server.WriteTimeout = r.cfg.WriteTimeout
	r.echo.Server.IdleTimeout = r.cfg.IdleTimeout

	if err := r.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Address 設定ポートから待ち受けアドレスを返す
func (r *Router) Address() string {
	return ":" + strconv.Itoa(r.cfg.Port)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
