package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mint-server/internal/domain/user"
	"mint-server/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.JWTConfig{
		Secret: "test-secret",
		Issuer: "mint-server",
	}

	tests := []struct {
		name          string
		header        func(t *testing.T) string
		wantStatus    int
		wantPrincipal user.Principal
	}{
		{
			name: "正常系: 有効なトークン",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, cfg.Secret, jwt.SigningMethodHS256, jwt.MapClaims{
					"user_id": "admin1",
					"iss":     "mint-server",
					"exp":     time.Now().Add(time.Hour).Unix(),
				})
			},
			wantStatus:    http.StatusOK,
			wantPrincipal: user.UserPrincipal("admin1"),
		},
		{
			name:       "異常系: Authorizationヘッダーなし",
			header:     func(t *testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: Bearer形式でない",
			header:     func(t *testing.T) string { return "Token abc" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 不正なトークン",
			header:     func(t *testing.T) string { return "Bearer invalid-token" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 署名鍵が異なる",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, "other-secret", jwt.SigningMethodHS256, jwt.MapClaims{
					"user_id": "admin1",
					"iss":     "mint-server",
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 期限切れ",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, cfg.Secret, jwt.SigningMethodHS256, jwt.MapClaims{
					"user_id": "admin1",
					"iss":     "mint-server",
					"exp":     time.Now().Add(-time.Hour).Unix(),
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 発行者が異なる",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, cfg.Secret, jwt.SigningMethodHS256, jwt.MapClaims{
					"user_id": "admin1",
					"iss":     "someone-else",
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: user_idクレームなし",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, cfg.Secret, jwt.SigningMethodHS256, jwt.MapClaims{
					"iss": "mint-server",
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: HMAC以外のアルゴリズム",
			header: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
					"user_id": "admin1",
					"iss":     "mint-server",
				}).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return "Bearer " + token
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := newTestLogger(t)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var got user.Principal
			handler := AuthMiddleware(cfg, logger)(func(c echo.Context) error {
				got = PrincipalFrom(c)
				return c.String(http.StatusOK, "ok")
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantPrincipal, got)
			} else {
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}

func TestPrincipalFrom_Anonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.True(t, PrincipalFrom(c).IsAnonymous())
}
