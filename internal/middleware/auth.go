package middleware

import (
	"net/http"
	"strings"

	"trokazz-server/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserId  = "user_id"
	ContextIsAdmin = "is_admin"
)

// Auth validates the bearer token and puts the caller's identity on the
// request context.
func Auth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := manager.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserId, claims.UserId)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid bearer token is
// present and leaves the request anonymous otherwise.
func OptionalAuth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
			if claims, err := manager.ParseToken(token); err == nil {
				c.Set(ContextUserId, claims.UserId)
				c.Set(ContextIsAdmin, claims.IsAdmin)
			}
		}
		c.Next()
	}
}

// RequireAdmin aborts unless Auth established an admin identity.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// UserId returns the authenticated user id from the request context.
func UserId(c *gin.Context) string {
	return c.GetString(ContextUserId)
}
