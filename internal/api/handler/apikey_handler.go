package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
)

type APIKeyHandler struct {
	keys ports.APIKeyService
}

func NewAPIKeyHandler(keys ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// Issue generates a new key for the current tenant, revoking the previous one.
//
// @Summary      Issue tenant API key
// @Tags         api-key
// @Produce      json
// @Security     SessionToken
// @Success      201  {object}  issuedKeyResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/api-key [post]
func (h *APIKeyHandler) Issue(c echo.Context) error {
	issued, err := h.keys.Issue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, issuedKeyResponse{
		Key:       issued.Key,
		KeyID:     issued.KeyID,
		TenantID:  issued.TenantID,
		CreatedAt: issued.CreatedAt,
	})
}

// Describe returns metadata of the current tenant's key. The secret is never returned.
//
// @Summary      Describe tenant API key
// @Tags         api-key
// @Produce      json
// @Security     SessionToken
// @Success      200  {object}  apiKeyResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/api-key [get]
func (h *APIKeyHandler) Describe(c echo.Context) error {
	key, err := h.keys.Describe(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiKeyResponse{KeyID: key.ID, TenantID: key.TenantID, CreatedAt: key.CreatedAt})
}

// Tenant reports which tenant an API key request is scoped to.
//
// @Summary      Tenant of the API key
// @Tags         api
// @Produce      json
// @Security     APIKey
// @Success      200  {object}  tenantResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/tenant [get]
func (h *APIKeyHandler) Tenant(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := identity.Tenant(ctx)
	if err != nil {
		return err
	}
	auth, _ := identity.FromContext(ctx)
	return c.JSON(http.StatusOK, tenantResponse{Tenant: tenant, Authentication: auth.Method()})
}
