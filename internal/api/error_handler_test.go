package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("register: %w", domain.InvalidArgument("malformed email")), http.StatusBadRequest},
		{fmt.Errorf("build: %w: user is required", domain.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("login: %w: %w", domain.ErrLoginDenied, domain.ErrUserNotFound), http.StatusUnauthorized},
		{fmt.Errorf("leave: %w", domain.ErrMemberNotFound), http.StatusNotFound},
		{domain.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("login: %w", domain.ErrUnknownRegistration), http.StatusNotFound},
		{fmt.Errorf("login: %w", domain.ErrTokenReplayed), http.StatusUnauthorized},
		{fmt.Errorf("login: %w", domain.ErrInvalidUpstreamToken), http.StatusUnauthorized},
		{domain.ErrEmailNotProvided, http.StatusUnauthorized},
		{fmt.Errorf("load: %w", domain.ErrNoRolesFound), http.StatusForbidden},
		{domain.ErrNoTenantFound, http.StatusForbidden},
		{domain.ErrNoAuthenticatedUser, http.StatusUnauthorized},
		{domain.ErrInvalidAPIKey, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAPIKeyNotFound, http.StatusNotFound},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("password=hunter2"), c)

	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "internal server error" {
		t.Fatalf("expected generic message, got %q", resp.Error)
	}
}

func TestHTTPErrorHandler_Messages(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		msg    string
		reason string
	}{
		{
			name: "argument detail without operation prefix",
			err:  fmt.Errorf("register: %w", domain.InvalidArgument("name must not be empty")),
			code: http.StatusBadRequest,
			msg:  "name must not be empty",
		},
		{
			name: "plain invalid argument",
			err:  fmt.Errorf("build principal: %w: upstream principal is required", domain.ErrInvalidArgument),
			code: http.StatusBadRequest,
			msg:  "invalid argument",
		},
		{
			name: "unknown account on login",
			err:  fmt.Errorf("login: %w: %w", domain.ErrLoginDenied, fmt.Errorf("load: %w", domain.ErrUserNotFound)),
			code: http.StatusUnauthorized,
			msg:  "login denied",
		},
		{
			name: "no tenant on login",
			err:  fmt.Errorf("login: %w: %w", domain.ErrLoginDenied, domain.ErrNoTenantFound),
			code: http.StatusUnauthorized,
			msg:  "login denied",
		},
		{
			name:   "membership rule",
			err:    fmt.Errorf("leave tenant: %w", domain.Deny(domain.DenialLastOwnerCannotLeave)),
			code:   http.StatusForbidden,
			msg:    "operation denied",
			reason: "LAST_OWNER_CANNOT_LEAVE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tt.msg || resp.Reason != tt.reason {
				t.Fatalf("expected %q/%q, got %q/%q", tt.msg, tt.reason, resp.Error, resp.Reason)
			}
		})
	}
}
