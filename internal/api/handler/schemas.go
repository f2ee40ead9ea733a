package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

type registerRequest struct {
	Name         string `json:"name"         validate:"required"`
	Email        string `json:"email"        validate:"required,valid_email"`
	Organization string `json:"organization"`
}

type registerResponse struct {
	User   *domain.User   `json:"user"`
	Tenant *domain.Tenant `json:"tenant"`
}

// loginRequest carries the signed assertion of the identity provider.
type loginRequest struct {
	Assertion string `json:"assertion" validate:"required"`
}

type switchTenantRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
}

type principalResponse struct {
	User           *domain.User   `json:"user"`
	Tenant         *domain.Tenant `json:"tenant"`
	Authorities    []string       `json:"authorities"`
	Roles          []string       `json:"roles"`
	RegistrationID string         `json:"registration_id"`
}

func newPrincipalResponse(p *domain.AuthenticatedPrincipal) principalResponse {
	return principalResponse{
		User:           p.User(),
		Tenant:         p.Tenant(),
		Authorities:    p.Authorities(),
		Roles:          p.Roles(),
		RegistrationID: p.ProviderRegistrationID(),
	}
}

type sessionResponse struct {
	SessionToken string            `json:"session_token"`
	ExpiresAt    time.Time         `json:"expires_at"`
	Principal    principalResponse `json:"principal"`
}

type switchTenantResponse struct {
	Result    domain.TenantSwitchResult `json:"result"`
	Principal *principalResponse        `json:"principal,omitempty"`
}

type issuedKeyResponse struct {
	Key       string    `json:"key"`
	KeyID     uuid.UUID `json:"key_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

type apiKeyResponse struct {
	KeyID     uuid.UUID `json:"key_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

type tenantResponse struct {
	Tenant         *domain.Tenant              `json:"tenant"`
	Authentication domain.AuthenticationMethod `json:"authentication"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=OWNER ADMIN USER"`
}

type allowedRolesResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}
