package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/services"
)

// DBMiddleware puts the shared gorm handle into the request context so
// handlers can do c.MustGet("db").
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

// AIMiddleware injects the chat-completion client the same way; tests swap
// in a stub Completer here.
func AIMiddleware(ai services.Completer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ai", ai)
		c.Next()
	}
}
