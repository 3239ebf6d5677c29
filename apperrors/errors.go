package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"storefront-service/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same code and message so wrapped copies compare equal
// to the sentinel they were built from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause.
func Wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

// Validationf returns a validation error with a formatted cause.
func Validationf(format string, args ...any) *Error {
	return Wrap(ErrValidation, fmt.Errorf(format, args...))
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrUpstream       = New(http.StatusBadGateway, "Upstream service error", nil)
)

// Validation error types
var (
	ErrValidation = New(http.StatusBadRequest, "Validation error", nil)
	ErrEmptyCart  = New(http.StatusBadRequest, "Cart is empty", nil)
)

// Authentication error types
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
)

// Feature error types
var (
	ErrEditDisabled = New(http.StatusForbidden, "Product editing is disabled", nil)
)

// From converts any error into an *Error, defaulting to an internal server error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// ErrorMiddleware renders the last error pushed with c.Error as JSON. Server
// errors are logged with their cause, which never reaches the client.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), appErr.Message, appErr.Err,
				zap.Int("status", appErr.Code),
				zap.String("path", c.Request.URL.Path))
		}
		body := gin.H{"error": appErr.Message}
		if appErr.Err != nil && appErr.Code < http.StatusInternalServerError {
			body["detail"] = appErr.Err.Error()
		}
		c.AbortWithStatusJSON(appErr.Code, body)
	}
}
