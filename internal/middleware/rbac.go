package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/entity"
)

// RequireUserType admits only accounts onboarded as the given side of the marketplace.
func RequireUserType(userType entity.UserType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyUserType).(string)
			if !ok || value == "" {
				return c.JSON(http.StatusForbidden, map[string]any{"status": "error", "message": "onboarding required"})
			}
			if entity.UserType(value) != userType {
				return c.JSON(http.StatusForbidden, map[string]any{"status": "error", "message": "available to " + string(userType) + " accounts only"})
			}
			return next(c)
		}
	}
}
