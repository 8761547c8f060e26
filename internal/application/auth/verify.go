package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"points-server/internal/domain/account"
	"points-server/internal/infrastructure/config"
)

// ErrInvalidBearerToken 認証トークンが不正または期限切れ
var ErrInvalidBearerToken = errors.New("invalid or expired bearer token")

// bearerClaims 認証トークンのクレーム
type bearerClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseBearerToken 認証トークンを検証し、呼び出し元のPrincipalを返す
func ParseBearerToken(cfg *config.JWTConfig, tokenString string) (*account.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &bearerClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBearerToken, err)
	}

	role, err := account.NewRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBearerToken, err)
	}
	principal, err := account.NewPrincipal(claims.UserID, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBearerToken, err)
	}
	return principal, nil
}
