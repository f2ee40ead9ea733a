package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

// UserRepository persists internal user records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// MarkEmailVerified records that the user's email address is confirmed.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// TenantRepository persists tenants.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	Create(ctx context.Context, tenant *domain.Tenant) error
}

// MembershipRepository stores which roles a user holds in which tenant.
type MembershipRepository interface {
	// FirstTenantID returns the oldest tenant membership of the user, or
	// domain.ErrNoTenantFound.
	FirstTenantID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	// TenantIDs lists every tenant the user belongs to.
	TenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// Roles lists the user's roles in tenantID (without ROLE_ prefix).
	Roles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
	Insert(ctx context.Context, m *domain.Membership) error
	// Members lists every membership of tenantID, oldest first.
	Members(ctx context.Context, tenantID uuid.UUID) ([]domain.Membership, error)
	CountOwners(ctx context.Context, tenantID uuid.UUID) (int, error)
	// ReplaceRoles drops the user's roles in tenantID and grants roles instead.
	ReplaceRoles(ctx context.Context, userID, tenantID uuid.UUID, roles []string) error
	// Remove deletes every membership of the user in tenantID and reports how
	// many were removed.
	Remove(ctx context.Context, userID, tenantID uuid.UUID) (int, error)
}

// APIKeyRepository stores one API key per tenant.
type APIKeyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TenantAPIKey, error)
	FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*domain.TenantAPIKey, error)
	// Replace atomically removes any key of the tenant and stores key.
	Replace(ctx context.Context, key *domain.TenantAPIKey) error
}

// AuthEventRepository appends to the authentication audit trail.
type AuthEventRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}

// Transactor runs fn so that the writes it performs through ctx are applied
// together or not at all.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
