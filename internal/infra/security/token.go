package security

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("security: invalid token")

// Claims is the identity a verified bearer token carries.
type Claims struct {
	Subject string
	Role    string
}

// TokenProvider issues and verifies HS256 JWTs with a role claim. The same
// provider backs both user logins and the short-lived elevated tokens the
// booking service mints for internal inventory calls; the two services share
// the signing secret.
type TokenProvider struct {
	secret []byte
}

func NewTokenProvider(secret string) (*TokenProvider, error) {
	if secret == "" {
		return nil, errors.New("security: jwt secret required")
	}
	return &TokenProvider{secret: []byte(secret)}, nil
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (p *TokenProvider) Issue(subject string, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *TokenProvider) Verify(token string) (Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: claims.Subject, Role: claims.Role}, nil
}
