package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkventure/models"
	"parkventure/utils"
)

// PrincipalKey is the gin context key the verified caller is stored
// under.
const PrincipalKey = "principal"

// AuthMiddleware verifies the bearer token and attaches the principal.
// The booking core trusts these claims; issuing tokens is the identity
// service's job.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, parkID, err := utils.ExtractPrincipalFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if role == "" {
			role = models.RoleUser
		}

		c.Set(PrincipalKey, models.Principal{ID: subject, Role: role, ParkID: parkID})
		c.Next()
	}
}

// GetPrincipal returns the caller set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
