package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var denied *domain.MemberOperationError
		if errors.As(err, &denied) {
			_ = c.JSON(http.StatusForbidden, errorResponse{Error: "operation denied", Reason: string(denied.Reason)})
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		var ae *domain.ArgumentError
		if errors.As(err, &ae) {
			return http.StatusBadRequest, ae.Detail
		}
		return http.StatusBadRequest, "invalid argument"
	case errors.Is(err, domain.ErrLoginDenied):
		return http.StatusUnauthorized, "login denied"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrUnknownRegistration):
		return http.StatusNotFound, "unknown provider registration"
	case errors.Is(err, domain.ErrInvalidUpstreamToken), errors.Is(err, domain.ErrTokenReplayed):
		return http.StatusUnauthorized, "invalid upstream assertion"
	case errors.Is(err, domain.ErrEmailNotProvided):
		return http.StatusUnauthorized, "identity provider did not supply an email"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrNoTenantFound), errors.Is(err, domain.ErrNoRolesFound):
		return http.StatusForbidden, "no tenant access"
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNoAuthenticatedUser),
		errors.Is(err, domain.ErrNoAuthenticatedTenant),
		errors.Is(err, domain.ErrUnknownAuthentication):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrInvalidAPIKey):
		return http.StatusUnauthorized, "invalid api key"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrAPIKeyNotFound):
		return http.StatusNotFound, "api key not found"
	case errors.Is(err, domain.ErrMemberNotFound):
		return http.StatusNotFound, "member not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
