package middleware

import (
	"errors"
	"net/http"
	"time"

	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware メトリクス記録ミドルウェア
//
// ErrorHandlerMiddleware より外側に置くと、エラーは応答済みのステータスとして観測される。
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()

			metrics.RecordRequest(ctx, c.Request().Method, c.Path())

			err := next(c)

			// レスポンス時間（秒単位）
			metrics.RecordResponseTime(ctx, c.Request().Method, c.Path(), time.Since(start).Seconds())

			statusCode := c.Response().Status
			if err != nil && !c.Response().Committed {
				statusCode = http.StatusInternalServerError
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					statusCode = httpErr.Code
				}
			}
			switch {
			case statusCode >= 500:
				metrics.RecordError(ctx, "server_error")
			case statusCode >= 400:
				metrics.RecordError(ctx, "client_error")
			}

			return err
		}
	}
}
