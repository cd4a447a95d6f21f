package middleware

import (
	"net/http"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/gin-gonic/gin"
)

const errForbidden = "You're not authorized"

// RequireRole runs after Auth and rejects callers whose role is not in
// the accepted set. Pure decision logic, no side effects.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
			return
		}

		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": errForbidden})
	}
}
