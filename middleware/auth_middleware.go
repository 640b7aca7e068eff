package middleware

import (
	"net/http"

	"notelock/models"
	"notelock/services"
	"notelock/utils/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and resolves it into the typed
// principal identity. This is the only place a credential is parsed; every
// downstream handler and service receives the PrincipalID it produces.
func AuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("principalID", models.PrincipalID(claims.UserID))
		c.Set("email", claims.Email)

		c.Next()
	}
}
