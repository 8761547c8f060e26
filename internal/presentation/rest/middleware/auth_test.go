package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"points-server/internal/domain/account"
	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", Issuer: "points-server"}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		wantID         string
		wantRole       account.Role
	}{
		{
			name:           "正常系: 顧客トークン",
			header:         "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "points-server", "exp": exp}),
			expectedStatus: http.StatusOK,
			wantID:         "client-1",
			wantRole:       account.RoleClient,
		},
		{
			name:           "正常系: 店舗トークン",
			header:         "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"user_id": "shop-a", "role": "merchant", "iss": "points-server", "exp": exp}),
			expectedStatus: http.StatusOK,
			wantID:         "shop-a",
			wantRole:       account.RoleMerchant,
		},
		{
			name:           "異常系: ヘッダーなし",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: Bearer以外",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: トークンが空",
			header:         "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 不正なトークン",
			header:         "Bearer invalid-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 期限切れ",
			header:         "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "points-server", "exp": time.Now().Add(-time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: ロールが無効",
			header:         "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "admin", "iss": "points-server", "exp": exp}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var got *account.Principal
			handler := AuthMiddleware(cfg, logger)(func(c echo.Context) error {
				p, err := account.PrincipalFromContext(c.Request().Context())
				require.NoError(t, err)
				got = p
				return c.String(http.StatusOK, "ok")
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID())
			assert.Equal(t, tt.wantRole, got.Role())
			assert.Equal(t, tt.wantID, c.Get("user_id"))
		})
	}
}
