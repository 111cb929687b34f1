package middleware

import (
	"time"

	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware アクセスログミドルウェア
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger.Debug(req.Context(), "HTTP request started", map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"remote_addr": c.RealIP(),
				"user_agent":  req.UserAgent(),
			})

			err := next(c)

			fields := map[string]interface{}{
				"method":      req.Method,
				"route":       c.Path(),
				"path":        req.URL.Path,
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
				fields["request_id"] = requestID
			}
			if p := PrincipalFrom(c); !p.IsAnonymous() {
				fields["principal"] = p.UserID
			}

			if err != nil {
				logger.Error(c.Request().Context(), "HTTP request failed", err, fields)
			} else {
				logger.Info(c.Request().Context(), "HTTP request completed", fields)
			}

			return err
		}
	}
}
