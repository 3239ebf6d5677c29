package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type sessionSet map[string]bool

func (s sessionSet) IsLoggedIn(_ context.Context, sessionID string) bool {
	return s[sessionID]
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(Session(), apperrors.ErrorMiddleware())
	reached := 0
	r.POST("/admin/products", RequireAdmin(sessionSet{"admin-1": true}), func(c *gin.Context) {
		reached++
		c.Status(http.StatusCreated)
	})

	tests := []struct {
		name    string
		session string
		want    int
	}{
		{"logged in", "admin-1", http.StatusCreated},
		{"other session", "visitor-1", http.StatusUnauthorized},
		{"no session", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
			if tt.session != "" {
				req.Header.Set(SessionHeader, tt.session)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
	assert.Equal(t, 1, reached)
}
