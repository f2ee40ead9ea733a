package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
)

// IdentityHandler exposes the authenticated user's view of their session.
type IdentityHandler struct {
	switchService ports.TenantSwitchService
}

func NewIdentityHandler(switchService ports.TenantSwitchService) *IdentityHandler {
	return &IdentityHandler{switchService: switchService}
}

// Me returns the principal bound to the current session.
//
// @Summary      Current principal
// @Tags         identity
// @Produce      json
// @Security     SessionToken
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	p, err := identity.Principal(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPrincipalResponse(p))
}

// SwitchTenant rebinds the session to another tenant of the same user.
//
// @Summary      Switch tenant
// @Tags         identity
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      switchTenantRequest  true  "Target tenant"
// @Success      200   {object}  switchTenantResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  switchTenantResponse
// @Router       /v1/tenant/switch [post]
func (h *IdentityHandler) SwitchTenant(c echo.Context) error {
	sessionID, err := ctxSessionID(c)
	if err != nil {
		return err
	}

	var req switchTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id must be a uuid")
	}

	result, sess, err := h.switchService.SwitchTenant(c.Request().Context(), sessionID, tenantID)
	if err != nil {
		return err
	}
	if result != domain.TenantChanged {
		return c.JSON(http.StatusForbidden, switchTenantResponse{Result: result})
	}

	p := newPrincipalResponse(sess.Principal)
	return c.JSON(http.StatusOK, switchTenantResponse{Result: result, Principal: &p})
}
