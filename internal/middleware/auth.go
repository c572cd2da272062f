package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/logger"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// Auth is the "protect" guard: it requires a valid Bearer token whose user still exists,
// then stores the user's id and role in the context.
func Auth(db *sql.DB, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		userID, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Resolve the user ---
		var roleName string
		err = db.QueryRowContext(c.Request.Context(), "SELECT role FROM users WHERE id = ?", userID).Scan(&roleName)
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}
		if err != nil {
			logger.Get().WithError(err).Error("auth: role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		role, err := auth.ParseRole(roleName)
		if err != nil {
			logger.Get().WithField("role", roleName).Warn("auth: unknown role stored, treating as USER")
			role = auth.RoleUser
		}

		// 4. --- Success ---
		c.Set(ctxUserID, userID)
		c.Set(ctxUserRole, role)
		c.Next()
	}
}

// UserID returns the authenticated user's id. Only valid behind Auth.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// Role returns the authenticated user's role, or the zero Role when unauthenticated.
func Role(c *gin.Context) auth.Role {
	v, ok := c.Get(ctxUserRole)
	if !ok {
		return 0
	}
	role, _ := v.(auth.Role)
	return role
}
