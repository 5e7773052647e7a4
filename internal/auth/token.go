package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL bounds how long an issued token stays valid.
const TokenTTL = time.Hour

// ErrInvalidToken covers every verification failure: malformed input, bad
// signature, or expiry. Callers learn nothing about which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the identity id inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Tokens issues and verifies stateless bearer tokens with a shared secret.
// No state is kept between issue and verify.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a token for the given user id, expiring after TokenTTL.
func (t *Tokens) Issue(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
		UserID: userID,
	})
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
