// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// FallbackSecret signs tokens when no secret is configured. Tokens signed
// with it are forgeable by anyone who reads this file; it exists so local
// and demo setups keep working.
const FallbackSecret = "secret123"

// Claims holds the registered claims only. The user id travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer creates and validates signed, time-limited session tokens.
// It is immutable after construction and safe for concurrent use.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	degraded bool
	now      func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret. An empty secret
// switches to FallbackSecret and marks the issuer as degraded.
func NewTokenIssuer(secret string, validity time.Duration) *TokenIssuer {
	ti := &TokenIssuer{secret: []byte(secret), validity: validity, now: time.Now}
	if secret == "" {
		ti.secret = []byte(FallbackSecret)
		ti.degraded = true
	}
	return ti
}

// Degraded reports whether the issuer runs on the fallback secret.
func (ti *TokenIssuer) Degraded() bool {
	return ti.degraded
}

// Validity returns the token lifetime.
func (ti *TokenIssuer) Validity() time.Duration {
	return ti.validity
}

// Issue returns a token for userID expiring after the configured validity.
func (ti *TokenIssuer) Issue(userID string) (string, error) {
	return GenerateToken(userID, ti.secret, ti.now(), ti.validity)
}

// Verify returns the user id asserted by token. It fails with
// common.ErrTokenExpired once the current time reaches the expiry and with
// common.ErrInvalidToken for anything else.
func (ti *TokenIssuer) Verify(token string) (string, error) {
	return GetUserIDFromToken(token, ti.secret, ti.now())
}

func GenerateToken(userID string, secretKey []byte, issuedAt time.Time, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return claims.Subject, nil
}
