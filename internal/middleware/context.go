package middleware

import "github.com/labstack/echo/v4"

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserType  = "user_type"
	ContextKeyRequestID = "request_id"
	// ContextKeyError holds the cause of a failure a handler already rendered.
	ContextKeyError     = "handler_error"
)

// UserIDFromContext returns the authenticated user id, or "" for anonymous requests.
func UserIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserID).(string); ok {
		return val
	}
	return ""
}

// RecordError keeps err on the context so Logging can report it after the
// handler has written its own response.
func RecordError(c echo.Context, err error) {
	c.Set(ContextKeyError, err)
}
