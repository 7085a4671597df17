package middleware

import (
	"crypto/subtle"
	"strings"

	"skillbridge/models"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware accepts the static admin token. X-Admin-ID names the
// operator for audit fields and defaults to "admin".
func AdminAuthMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if adminToken == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, 401, "unauthorized", "Missing or invalid Authorization header", "")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(tokenString), []byte(adminToken)) != 1 {
			utils.JSONError(c, 401, "unauthorized", "Unauthorized admin access", "")
			return
		}

		adminID := strings.TrimSpace(c.GetHeader("X-Admin-ID"))
		if adminID == "" {
			adminID = "admin"
		}
		SetActor(c, models.Actor{ID: adminID, Name: adminID, Role: models.RoleAdmin})
		c.Next()
	}
}
