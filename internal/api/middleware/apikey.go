package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
)

// APIKeyAuth authenticates machine clients by the X-API-Key header. The
// request is scoped to the key's tenant and carries no user.
func APIKeyAuth(keys ports.APIKeyService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(domain.APIKeyHeader)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing api key")
			}

			auth, err := keys.Authenticate(c.Request().Context(), raw)
			if errors.Is(err, domain.ErrInvalidAPIKey) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			if err != nil {
				return err
			}

			ctx := identity.WithAuthentication(c.Request().Context(), auth)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
