package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/memotodo/internal/model"
)

// tokenIssuer はスタブセッショントークンの発行者。
const tokenIssuer = "memotodo-stub"

// ErrInvalidToken はトークンの署名・期限・内容のいずれかが不正な場合に返される。
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Session model.Session `json:"session"`
	jwt.RegisteredClaims
}

// TokenCodec はセッションレコードをHS256署名付きJWTとしてエンコードする。
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Encode はセッションをttlの有効期間を持つトークンに変換する。
func (c *TokenCodec) Encode(session model.Session, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("session secret is not configured")
	}
	now := c.now()
	claims := sessionClaims{
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode はトークンを検証してセッションを復元する。
// 署名不一致・期限切れ・アルゴリズム不一致・セッション欠損はErrInvalidTokenとなる。
func (c *TokenCodec) Decode(token string) (*model.Session, error) {
	if len(c.secret) == 0 {
		return nil, fmt.Errorf("%w: session secret is not configured", ErrInvalidToken)
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	session := claims.Session
	if !session.Valid() || session.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: malformed session record", ErrInvalidToken)
	}
	return &session, nil
}
