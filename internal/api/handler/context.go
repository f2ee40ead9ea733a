package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/api/middleware"
)

// ctxSessionID returns the session id stored by the SessionAuth middleware.
// Its absence means the route was mounted without that middleware.
func ctxSessionID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.SessionIDKey).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
