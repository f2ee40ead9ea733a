package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
)

// SessionIDKey is the echo context key holding the authenticated session id.
const SessionIDKey = "session_id"

// SessionToken returns the session id sent as a bearer token or, failing
// that, in the session cookie. It returns "" when neither is present.
func SessionToken(c echo.Context) string {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(domain.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionAuth loads the caller's session and attaches its principal to the
// request context.
func SessionAuth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := SessionToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			sess, err := auth.Authenticate(c.Request().Context(), token)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}
			if err != nil {
				return err
			}

			ctx := identity.WithAuthentication(c.Request().Context(), sess.Principal)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(SessionIDKey, sess.ID)

			return next(c)
		}
	}
}
