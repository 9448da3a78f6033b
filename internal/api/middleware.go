package api

import (
	"github.com/gin-gonic/gin"

	"github.com/axellelanca/shorturls/internal/auth"
)

const identityKey = "identity"

// OptionalAuth attaches the caller identity to the context. A missing or
// invalid bearer token leaves the caller anonymous; handlers that need an
// account reject anonymous callers themselves.
func OptionalAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.Anonymous
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			if id, err := verifier.Verify(token); err == nil {
				identity = id
			}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity set by OptionalAuth.
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Anonymous
}
