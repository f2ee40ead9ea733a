package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/api/middleware"
	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

type AuthHandler struct {
	authService         ports.AuthService
	registrationService ports.RegistrationService
	secureCookie        bool
}

func NewAuthHandler(authService ports.AuthService, registrationService ports.RegistrationService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		registrationService: registrationService,
		secureCookie:        secureCookie,
	}
}

// Register creates a new tenant owned by a new user.
//
// @Summary      Register a new tenant and its owner
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Owner and organisation details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.registrationService.Register(c.Request().Context(), ports.RegistrationInput{
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{User: res.User, Tenant: res.Tenant})
}

// Login exchanges an identity provider assertion for a session.
//
// @Summary      Login with an upstream identity provider
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registration_id  path      string        true  "Provider registration id"
// @Param        body             body      loginRequest  true  "Signed provider assertion"
// @Success      200              {object}  sessionResponse
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Router       /auth/login/{registration_id} [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), c.Param("registration_id"), req.Assertion)
	if err != nil {
		return err
	}

	c.SetCookie(sessionCookie(sess.ID, sess.ExpiresAt, h.secureCookie))
	return c.JSON(http.StatusOK, sessionResponse{
		SessionToken: sess.ID,
		ExpiresAt:    sess.ExpiresAt,
		Principal:    newPrincipalResponse(sess.Principal),
	})
}

// Logout ends the current session. It succeeds even when no session exists.
//
// @Summary      Logout
// @Tags         auth
// @Security     SessionToken
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}

	c.SetCookie(sessionCookie("", time.Unix(0, 0), h.secureCookie))
	return c.NoContent(http.StatusNoContent)
}

// sessionCookie builds the session cookie; an empty value expires it.
func sessionCookie(value string, expires time.Time, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
