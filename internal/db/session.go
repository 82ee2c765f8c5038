package db

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type sessionKey struct{}

// SessionMiddleware gives every request its own gorm session bound to the
// request context. Statements borrow a pooled connection and hand it back as
// soon as they finish, and cancelling the request aborts whatever is still
// running. The session is detached from the request once the chain returns,
// including when a later handler aborts or panics.
func SessionMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		session := db.WithContext(ctx).Session(&gorm.Session{})

		c.Request = c.Request.WithContext(context.WithValue(ctx, sessionKey{}, session))
		defer func() {
			c.Request = c.Request.WithContext(ctx)
		}()

		c.Next()
	}
}

// FromContext returns the request session set by SessionMiddleware, or a
// context-bound session on fallback when none is set.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if session, ok := ctx.Value(sessionKey{}).(*gorm.DB); ok && session != nil {
		return session
	}
	return fallback.WithContext(ctx)
}
