package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"points-server/internal/domain/account"
	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseBearerToken(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", Issuer: "points-server", Expiration: time.Hour}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		wantID   string
		wantRole account.Role
		wantErr  bool
	}{
		{
			name: "正常系: 生成したトークン",
			token: func(t *testing.T) string {
				svc := NewAuthApplicationService(cfg, otelinfra.NewLogger(otel.Tracer("test")))
				resp, err := svc.GenerateToken(context.Background(), &GenerateTokenRequest{UserID: "shop-a", Role: "merchant"})
				require.NoError(t, err)
				return resp.Token
			},
			wantID:   "shop-a",
			wantRole: account.RoleMerchant,
		},
		{
			name: "異常系: 署名鍵が違う",
			token: func(t *testing.T) string {
				return signed(t, "other", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "points-server", "exp": exp})
			},
			wantErr: true,
		},
		{
			name: "異常系: 期限切れ",
			token: func(t *testing.T) string {
				return signed(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "points-server", "exp": time.Now().Add(-time.Minute).Unix()})
			},
			wantErr: true,
		},
		{
			name: "異常系: 有効期限なし",
			token: func(t *testing.T) string {
				return signed(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "points-server"})
			},
			wantErr: true,
		},
		{
			name: "異常系: 発行者が違う",
			token: func(t *testing.T) string {
				return signed(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "role": "client", "iss": "someone-else", "exp": exp})
			},
			wantErr: true,
		},
		{
			name: "異常系: ロールなし",
			token: func(t *testing.T) string {
				return signed(t, "test-secret", jwt.MapClaims{"user_id": "client-1", "iss": "points-server", "exp": exp})
			},
			wantErr: true,
		},
		{
			name: "異常系: ユーザーIDなし",
			token: func(t *testing.T) string {
				return signed(t, "test-secret", jwt.MapClaims{"role": "client", "iss": "points-server", "exp": exp})
			},
			wantErr: true,
		},
		{
			name: "異常系: 形式不正",
			token: func(t *testing.T) string {
				return "invalid-token"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(cfg, tt.token(t))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBearerToken)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID())
			assert.Equal(t, tt.wantRole, got.Role())
		})
	}
}
