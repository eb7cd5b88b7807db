package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for AUTH_MODE=none.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// dummy user for logging
		c.Set("user_id", uint(0))
		c.Set("user_id_str", "anonymous")
		c.Next()
	}
}
