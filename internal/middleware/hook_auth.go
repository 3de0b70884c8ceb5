package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecretHeader carries the shared secret the host sends with every hook call.
const SecretHeader = "X-Hook-Secret"

func secretMatches(secret, got string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(got)) == 1
}

// HookSecretMiddleware wraps an http.Handler and rejects requests that do not
// carry the shared secret. An empty secret disables the check.
// Returns 401 Unauthorized on mismatch.
func HookSecretMiddleware(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !secretMatches(secret, r.Header.Get(SecretHeader)) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GinHookSecretMiddleware creates a Gin middleware for the shared-secret check.
func GinHookSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if !secretMatches(secret, c.GetHeader(SecretHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
