package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// APIKeyHeader carries tenant API keys on machine-to-machine requests.
const APIKeyHeader = "X-API-Key"

// TenantAPIKey is the stored form of a tenant's key. Only a hash of the
// secret part is kept.
type TenantAPIKey struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	SecretHash string
	CreatedAt  time.Time
}

// TenantAPIKeyAuthentication identifies a tenant, not a user.
type TenantAPIKeyAuthentication struct {
	tenant *Tenant
	keyID  uuid.UUID
}

var _ TenantBound = (*TenantAPIKeyAuthentication)(nil)

func NewTenantAPIKeyAuthentication(tenant *Tenant, keyID uuid.UUID) (*TenantAPIKeyAuthentication, error) {
	if tenant == nil {
		return nil, fmt.Errorf("%w: tenant is required", ErrInvalidArgument)
	}
	return &TenantAPIKeyAuthentication{tenant: tenant, keyID: keyID}, nil
}

// Name is the tenant id; there is no user behind an API key.
func (a *TenantAPIKeyAuthentication) Name() string                 { return a.tenant.ID.String() }
func (a *TenantAPIKeyAuthentication) Authorities() []string        { return nil }
func (a *TenantAPIKeyAuthentication) Method() AuthenticationMethod { return MethodAPIKey }
func (a *TenantAPIKeyAuthentication) Tenant() *Tenant              { return a.tenant }
func (a *TenantAPIKeyAuthentication) KeyID() uuid.UUID             { return a.keyID }
