// Package auth adapts bearer JWTs into the caller identity the link services consume.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the services know about a caller.
type Identity struct {
	Authenticated bool
	AccountID     string
}

// Anonymous is the identity of a caller without a valid token.
var Anonymous = Identity{}

// Account returns an authenticated identity for accountID.
func Account(accountID string) Identity {
	return Identity{Authenticated: true, AccountID: accountID}
}

// Claims carries the account identifier. userId is preferred; the standard
// subject claim is accepted as a fallback.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for malformed, expired or badly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Verifier checks HMAC-signed tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}))
	if err != nil || !token.Valid {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	accountID := claims.UserID
	if accountID == "" {
		accountID = claims.Subject
	}
	if accountID == "" {
		return Anonymous, fmt.Errorf("%w: no account claim", ErrInvalidToken)
	}
	return Account(accountID), nil
}

// Issue signs a token for accountID. Used by the CLI and tests; credential
// checks happen elsewhere.
func (v *Verifier) Issue(accountID string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: accountID, RegisteredClaims: claims})
	return token.SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
