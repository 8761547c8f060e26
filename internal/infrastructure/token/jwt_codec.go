package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"points-server/internal/domain/qr_token"
)

// itemClaim 商品明細
type itemClaim struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// assignmentClaim ポイント付与の本体
type assignmentClaim struct {
	ShopID      string      `json:"shop_id"`
	Items       []itemClaim `json:"items"`
	TotalPoints int64       `json:"total_points"`
}

// redemptionClaim 景品交換の本体
type redemptionClaim struct {
	PrizeID  string `json:"prize_id"`
	ClientID string `json:"client_id"`
}

// tokenClaims QRコードに埋め込むクレーム
type tokenClaims struct {
	Kind       string           `json:"kind"`
	Assignment *assignmentClaim `json:"assignment,omitempty"`
	Redemption *redemptionClaim `json:"redemption,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec HS256で署名するトークンコーデック
type JWTCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option JWTCodecのオプション
type Option func(*JWTCodec)

// WithClock 現在時刻の取得関数を差し替える
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) {
		c.now = now
	}
}

// NewJWTCodec 新しいJWTCodecを作成
func NewJWTCodec(secret, issuer string, opts ...Option) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	c := &JWTCodec{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue 操作内容を署名し、ttl後に失効するトークンを作成
func (c *JWTCodec) Issue(payload qr_token.Payload, ttl time.Duration) (*qr_token.Token, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", qr_token.ErrInvalidRequest)
	}

	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	switch p := payload.(type) {
	case *qr_token.Assignment:
		items := make([]itemClaim, 0, len(p.Items))
		for _, item := range p.Items {
			items = append(items, itemClaim{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		claims.Kind = qr_token.KindAssignment.String()
		claims.Assignment = &assignmentClaim{
			ShopID:      p.ShopID,
			Items:       items,
			TotalPoints: p.TotalPoints,
		}
	case *qr_token.Redemption:
		claims.Kind = qr_token.KindRedemption.String()
		claims.Redemption = &redemptionClaim{
			PrizeID:  p.PrizeID,
			ClientID: p.ClientID,
		}
	default:
		return nil, qr_token.ErrInvalidKind
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return qr_token.NewToken(raw, payload, claims.ExpiresAt.Time), nil
}

// Verify 署名と有効期限を検証し、操作内容を復元
func (c *JWTCodec) Verify(raw string) (*qr_token.Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)

	claims := &tokenClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, qr_token.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", qr_token.ErrTokenInvalid, err)
	}

	payload, err := claims.payload()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qr_token.ErrTokenInvalid, err)
	}

	return qr_token.NewToken(raw, payload, claims.ExpiresAt.Time), nil
}

// payload 種別に一致する本体がちょうど1つあることを確認して復元
func (tc *tokenClaims) payload() (qr_token.Payload, error) {
	kind, err := qr_token.NewKind(tc.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case qr_token.KindAssignment:
		if tc.Assignment == nil || tc.Redemption != nil {
			return nil, errors.New("assignment body mismatch")
		}
		items := make([]qr_token.Item, 0, len(tc.Assignment.Items))
		for _, item := range tc.Assignment.Items {
			items = append(items, qr_token.Item{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		return qr_token.NewAssignment(tc.Assignment.ShopID, items, tc.Assignment.TotalPoints)
	case qr_token.KindRedemption:
		if tc.Redemption == nil || tc.Assignment != nil {
			return nil, errors.New("redemption body mismatch")
		}
		return qr_token.NewRedemption(tc.Redemption.PrizeID, tc.Redemption.ClientID)
	default:
		return nil, qr_token.ErrInvalidKind
	}
}
