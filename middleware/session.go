package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session_id"
	maxSessionLen = 128
)

// Session resolves the caller's session id from the X-Session-ID header. A
// missing or malformed id is replaced by a fresh one; the id in use is always
// echoed back so the client can keep it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if !validSessionID(id) {
			id = uuid.NewString()
		}
		c.Set(sessionKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the session id resolved by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
