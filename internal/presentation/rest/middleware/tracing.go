package middleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware OpenTelemetryトレーシングミドルウェア
func TracingMiddleware() echo.MiddlewareFunc {
	tracer := otel.Tracer("mint-server")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// トレースコンテキストの伝播
			ctx := otel.GetTextMapPropagator().Extract(c.Request().Context(), propagation.HeaderCarrier(c.Request().Header))

			ctx, span := tracer.Start(ctx, c.Request().Method+" "+c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", c.Request().Method),
				attribute.String("http.url", c.Request().URL.String()),
				attribute.String("http.route", c.Path()),
				attribute.String("http.user_agent", c.Request().UserAgent()),
			)

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			statusCode := c.Response().Status
			span.SetAttributes(attribute.Int("http.status_code", statusCode))
			if p := PrincipalFrom(c); !p.IsAnonymous() {
				span.SetAttributes(attribute.String("enduser.id", p.UserID))
			}

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if statusCode >= 500 {
				span.SetStatus(codes.Error, "server error")
			}

			return err
		}
	}
}
