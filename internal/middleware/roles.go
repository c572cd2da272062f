package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/auth"
)

// RequireRole must run after Auth. It rejects callers below min with 403.
func RequireRole(min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}
		if !Role(c).AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: " + min.String() + " role required"})
			return
		}
		c.Next()
	}
}
