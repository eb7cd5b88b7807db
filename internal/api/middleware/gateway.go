package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// It is used when the API runs behind a gateway that already authenticated the caller.
//
// With AUTH_MODE=gateway the headers are trusted unconditionally, so the API
// must only be reachable through the gateway.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		// numeric or opaque, depending on the gateway
		var userID uint
		if id, err := strconv.ParseUint(userIDStr, 10, 64); err == nil {
			userID = uint(id)
		}

		c.Set("user_id", userID)
		c.Set("user_id_str", userIDStr)
		c.Set("user_email", c.GetHeader("X-User-Email"))
		c.Set("user_role", c.GetHeader("X-User-Role"))

		c.Next()
	}
}

// GetUserIDFromGateway retrieves the user ID set by GatewayAuth or NoAuth
func GetUserIDFromGateway(c *gin.Context) (string, bool) {
	userIDStr, exists := c.Get("user_id_str")
	if !exists {
		return "", false
	}
	id, ok := userIDStr.(string)
	return id, ok
}
