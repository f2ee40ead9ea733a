package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/identity"
)

// RequireRole lets the request through when the caller holds one of
// allowedRoles in the current tenant.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !identity.HasAnyRole(c.Request().Context(), allowedRoles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
