package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "user_role"
)

// RequireAuth validates the bearer token and stores its claims on the
// context for downstream handlers.
func RequireAuth(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, claims.UserID.String())
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects callers whose token carries none of the given roles.
// Must run after RequireAuth.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(ctxRole)
		for _, role := range roles {
			if current == string(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
