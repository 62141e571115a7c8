// Package auth verifies the optional join token issued by the web application.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Consult/internal/domain"
)

var (
	ErrTokenMissing  = errors.New("join token missing")
	ErrTokenMismatch = errors.New("join token does not match identity")
)

// JoinClaims are the claims a join token must carry.
type JoinClaims struct {
	Role string `json:"role"`
	jwtlib.RegisteredClaims
}

// Verifier checks HS256 join tokens. A nil Verifier accepts everything.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify checks that token was signed with the shared secret and names id and role.
func (v *Verifier) Verify(token string, id domain.UserID, role domain.Role) error {
	if v == nil {
		return nil
	}
	if token == "" {
		return ErrTokenMissing
	}
	var claims JoinClaims
	_, err := jwtlib.ParseWithClaims(token, &claims, func(t *jwtlib.Token) (any, error) {
		return v.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("join token: %w", err)
	}
	if claims.Subject != string(id) {
		return ErrTokenMismatch
	}
	if r, err := domain.ParseRole(claims.Role); err != nil || r != role {
		return ErrTokenMismatch
	}
	return nil
}

// Issue signs a token for id and role. The web application issues these in
// production; the server uses it for tooling and tests.
func (v *Verifier) Issue(id domain.UserID, role domain.Role, ttl time.Duration) (string, error) {
	if v == nil {
		return "", errors.New("join tokens disabled")
	}
	now := time.Now()
	claims := JoinClaims{
		Role: string(role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   string(id),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(v.secret)
}
