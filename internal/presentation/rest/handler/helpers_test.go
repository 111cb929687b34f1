package handler

import (
	"io"
	"testing"

	"mint-server/internal/domain/user"
	otelinfra "mint-server/internal/infrastructure/observability/otel"
	restmiddleware "mint-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace/noop"
)

var adminPrincipal = user.UserPrincipal("admin1")

// newTestEcho エラーハンドリングと呼び出し元を設定したEchoを作成
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), otelinfra.LogLevelError)
	logger.SetOutput(io.Discard)

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {}
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(restmiddleware.PrincipalKey, adminPrincipal)
			return next(c)
		}
	})
	return e
}
