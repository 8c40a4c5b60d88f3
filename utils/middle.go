package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer JWT and sets the subject on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := VerifyToken(secret, tokenParts[1])
		if err != nil {
			Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}
