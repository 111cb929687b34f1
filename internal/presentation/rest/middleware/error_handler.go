package middleware

import (
	"errors"
	"net/http"

	"mint-server/internal/domain/mint"
	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// statusFor エラーコードに対応するHTTPステータス
var statusFor = map[mint.Code]int{
	mint.CodeAlreadyMinted:    http.StatusConflict,
	mint.CodeInvalidPeriod:    http.StatusBadRequest,
	mint.CodeUnauthorized:     http.StatusUnauthorized,
	mint.CodeForbidden:        http.StatusForbidden,
	mint.CodeMintFailed:       http.StatusInternalServerError,
	mint.CodeGenerationFailed: http.StatusInternalServerError,
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	if code := mint.CodeOf(err); code != "" {
		status, ok := statusFor[code]
		if !ok {
			status = http.StatusInternalServerError
		}
		fields := map[string]interface{}{
			"code": code.String(),
			"path": c.Request().URL.Path,
		}
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "Request failed", err, fields)
		} else {
			fields["error"] = err.Error()
			logger.Warn(ctx, "Request rejected", fields)
		}
		// Error() は mint_failed / generation_failed で内部の原因を含まない
		return c.JSON(status, ErrorResponse{
			Error:   code.String(),
			Message: err.Error(),
			Code:    code.String(),
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
