package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	errUnauthorized = "Unauthorized"

	identityKey = "identity"
)

// Auth validates a Bearer JWT and stores the caller's identity in the
// gin context. Token validity is signature plus expiry only; there is
// no revocation list.
func Auth(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
			return
		}

		sub, _ := claims["sub"].(string)
		emailAddr, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		if sub == "" || !domain.Role(role).Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
			return
		}

		c.Set(identityKey, domain.Identity{UserID: sub, Email: emailAddr, Role: domain.Role(role)})
		c.Next()
	}
}

// IdentityFromContext returns the identity set by Auth.
func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
