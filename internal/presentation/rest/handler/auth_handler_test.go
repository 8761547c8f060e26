package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	authapp "points-server/internal/application/auth"
	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

func TestAuthHandler_GenerateToken(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           string
		expectedStatus int
	}{
		{
			name:           "正常系: 顧客トークン生成",
			userID:         "client-1",
			body:           `{"role":"client"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "正常系: 店舗トークン生成",
			userID:         "shop-a",
			body:           `{"role":"merchant"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "異常系: ロールが不正",
			userID:         "client-1",
			body:           `{"role":"admin"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: ボディが不正",
			userID:         "client-1",
			body:           `{"role":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: IDに使えない文字",
			userID:         "client%20one",
			body:           `{"role":"client"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	cfg := &config.JWTConfig{
		Secret:     "test-secret",
		Expiration: 3600 * time.Second,
		Issuer:     "points-server",
	}
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(nil)
			h := NewAuthHandler(authapp.NewAuthApplicationService(cfg, logger))
			e.POST("/admin/users/:user_id/issue_token", h.GenerateToken)

			rec := doRequest(e, http.MethodPost, "/admin/users/"+tt.userID+"/issue_token", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp GenerateTokenResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.Equal(t, 3600, resp.ExpiresIn)

			principal, err := authapp.ParseBearerToken(cfg, resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, principal.ID())
		})
	}
}
