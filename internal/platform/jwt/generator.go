// Package jwtmw issues and verifies the session token carried in the "token" cookie.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/validation"
)

// DefaultTokenTTL is the lifetime embedded in every session token.
const DefaultTokenTTL = time.Hour

// ErrInvalidToken is returned by ParseToken for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the session token payload. UserID mirrors the subject for clients that read "userId".
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Generator signs and verifies HS256 session tokens.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
// A non-positive expiration falls back to DefaultTokenTTL.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	if expiration <= 0 {
		expiration = DefaultTokenTTL
	}
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token whose single subject is userID.
func (g *Generator) GenerateToken(userID string) (string, error) {
	if !validation.IsObjectID(userID) {
		return "", domain.New(domain.KindValidation, domain.MsgTokenUserIDInvalid)
	}
	if len(g.secret) == 0 {
		return "", domain.New(domain.KindCrypto, domain.MsgSecretMissing)
	}

	now := g.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", domain.Wrap(domain.KindCrypto, domain.MsgSignFailed, err)
	}

	return signed, nil
}

// ParseToken verifies signature and expiry and returns the subject.
func (g *Generator) ParseToken(tokenStr string) (string, error) {
	if len(g.secret) == 0 {
		return "", domain.New(domain.KindCrypto, domain.MsgSecretMissing)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC only
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
