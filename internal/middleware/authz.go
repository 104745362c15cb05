package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chats/internal/authz"
	"chats/internal/models"
)

func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		if !authz.HasRole(user.Role, allowed) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "You don't have enough permissions"})
			return
		}
		c.Next()
	}
}
