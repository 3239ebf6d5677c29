package middleware

import (
	"context"

	"storefront-service/apperrors"

	"github.com/gin-gonic/gin"
)

// AdminChecker reports whether a session holds an admin login.
type AdminChecker interface {
	IsLoggedIn(ctx context.Context, sessionID string) bool
}

// RequireAdmin rejects requests whose session is not logged in as admin. It
// must run after Session.
func RequireAdmin(auth AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsLoggedIn(c.Request.Context(), SessionID(c)) {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
