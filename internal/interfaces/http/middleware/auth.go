package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/pkg/auth"
)

const (
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"
)

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// AuthMiddleware requires a valid bearer session token
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortJSON(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			abortJSON(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// AdminMiddleware ensures the token carries the admin flag
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextIsAdmin); !exists {
			abortJSON(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !IsAdminFromContext(c) {
			abortJSON(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts the platform user id set by AuthMiddleware
func GetUserIDFromContext(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// IsAdminFromContext checks the admin flag set by AuthMiddleware
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}
