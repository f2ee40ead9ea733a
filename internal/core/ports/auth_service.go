package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

// UpstreamLogin is a verified assertion from an external identity provider.
type UpstreamLogin struct {
	User      *domain.OAuth2User
	TokenID   string
	ExpiresAt time.Time
}

// UpstreamVerifier checks an assertion issued for a provider registration.
type UpstreamVerifier interface {
	Verify(ctx context.Context, registrationID, assertion string) (*UpstreamLogin, error)
}

// SessionStore keeps the principal of each live session.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// Replace swaps the principal of an existing session keeping its expiry.
	Replace(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// ReplayGuard makes sure an upstream assertion is used for one login only.
type ReplayGuard interface {
	// Claim returns false when tokenID was already claimed.
	Claim(ctx context.Context, registrationID, tokenID string, ttl time.Duration) (bool, error)
}

// AuthEventDispatcher hands audit events to the background recorder.
type AuthEventDispatcher interface {
	Enqueue(event domain.AuthEvent)
}

// AuditService records one audit event.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuthService covers the session lifecycle.
type AuthService interface {
	Login(ctx context.Context, registrationID, assertion string) (*domain.Session, error)
	Authenticate(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// TenantSwitchService moves a session to another tenant of the same user.
type TenantSwitchService interface {
	SwitchTenant(ctx context.Context, sessionID string, tenantID uuid.UUID) (domain.TenantSwitchResult, *domain.Session, error)
}

// RegistrationInput carries a public sign-up request.
type RegistrationInput struct {
	Name         string
	Email        string
	Organization string
}

// RegistrationResult is returned after a user and their tenant were created.
type RegistrationResult struct {
	User   *domain.User
	Tenant *domain.Tenant
}

type RegistrationService interface {
	Register(ctx context.Context, in RegistrationInput) (*RegistrationResult, error)
}

// IssuedAPIKey holds the plaintext key; it is only ever returned once.
type IssuedAPIKey struct {
	Key       string
	KeyID     uuid.UUID
	TenantID  uuid.UUID
	CreatedAt time.Time
}

type APIKeyService interface {
	Issue(ctx context.Context) (*IssuedAPIKey, error)
	Describe(ctx context.Context) (*domain.TenantAPIKey, error)
	Authenticate(ctx context.Context, raw string) (*domain.TenantAPIKeyAuthentication, error)
}

// MemberService manages the memberships of the caller's tenant.
type MemberService interface {
	List(ctx context.Context) ([]domain.Member, error)
	AllowedRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	ChangeRole(ctx context.Context, userID uuid.UUID, role string) error
	Remove(ctx context.Context, userID uuid.UUID) error
	Leave(ctx context.Context) error
}
