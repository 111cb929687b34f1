package middleware

import (
	"strings"

	"mint-server/internal/domain/user"
	"mint-server/internal/infrastructure/config"
	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// PrincipalKey 認証済み呼び出し元を格納するコンテキストキー
const PrincipalKey = "principal"

// AuthMiddleware JWT認証ミドルウェア
//
// 署名と発行者を検証し、user_id クレームから呼び出し元を設定する。
// 管理者権限の判定はアプリケーション層で行う。
func AuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn(ctx, "Missing authorization header", nil)
				return unauthorized(c, "Missing authorization header")
			}

			// Bearerトークンの形式を確認
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				logger.Warn(ctx, "Invalid authorization header format", nil)
				return unauthorized(c, "Invalid authorization header format")
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.Secret), nil
			}, parserOpts...)
			if err != nil || !token.Valid {
				fields := map[string]interface{}{}
				if err != nil {
					fields["error"] = err.Error()
				}
				logger.Warn(ctx, "Invalid token", fields)
				return unauthorized(c, "Invalid or expired token")
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				logger.Warn(ctx, "Missing user_id in token claims", nil)
				return unauthorized(c, "Missing user_id in token")
			}

			c.Set(PrincipalKey, user.UserPrincipal(userID))

			return next(c)
		}
	}
}

// PrincipalFrom コンテキストから呼び出し元を取り出す（未認証は匿名）
func PrincipalFrom(c echo.Context) user.Principal {
	p, _ := c.Get(PrincipalKey).(user.Principal)
	return p
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(401, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
		Code:    "unauthorized",
	})
}
