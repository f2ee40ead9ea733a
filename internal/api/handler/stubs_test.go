package handler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, registrationID, assertion string) (*domain.Session, error)
	logoutFn func(ctx context.Context, sessionID string) error
}

func (s *stubAuthService) Login(ctx context.Context, registrationID, assertion string) (*domain.Session, error) {
	return s.loginFn(ctx, registrationID, assertion)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationResult, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationResult, error) {
	return s.registerFn(ctx, in)
}

type stubSwitchService struct {
	switchFn func(ctx context.Context, sessionID string, tenantID uuid.UUID) (domain.TenantSwitchResult, *domain.Session, error)
}

func (s *stubSwitchService) SwitchTenant(ctx context.Context, sessionID string, tenantID uuid.UUID) (domain.TenantSwitchResult, *domain.Session, error) {
	return s.switchFn(ctx, sessionID, tenantID)
}

type stubAPIKeyService struct {
	issueFn    func(ctx context.Context) (*ports.IssuedAPIKey, error)
	describeFn func(ctx context.Context) (*domain.TenantAPIKey, error)
}

func (s *stubAPIKeyService) Issue(ctx context.Context) (*ports.IssuedAPIKey, error) {
	return s.issueFn(ctx)
}

func (s *stubAPIKeyService) Describe(ctx context.Context) (*domain.TenantAPIKey, error) {
	return s.describeFn(ctx)
}

func (s *stubAPIKeyService) Authenticate(context.Context, string) (*domain.TenantAPIKeyAuthentication, error) {
	return nil, domain.ErrInvalidAPIKey
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func testPrincipal(t *testing.T, tenant *domain.Tenant, roles ...string) *domain.AuthenticatedPrincipal {
	t.Helper()
	upstream, err := domain.NewOAuth2User("sub-1", map[string]any{"email": "alice@example.com"}, []string{"OAUTH2_USER"})
	if err != nil {
		t.Fatalf("upstream: %v", err)
	}
	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, domain.RoleAuthority(r))
	}
	p, err := domain.NewAuthenticatedPrincipal(upstream, authorities, "google",
		&domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}, tenant)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	return p
}

func testSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	now := time.Now().UTC()
	return &domain.Session{
		ID:        id,
		Principal: testPrincipal(t, &domain.Tenant{ID: uuid.New()}, domain.RoleOwner),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

type stubMemberService struct {
	listFn       func(ctx context.Context) ([]domain.Member, error)
	allowedFn    func(ctx context.Context, userID uuid.UUID) ([]string, error)
	changeRoleFn func(ctx context.Context, userID uuid.UUID, role string) error
	removeFn     func(ctx context.Context, userID uuid.UUID) error
	leaveFn      func(ctx context.Context) error
}

func (s *stubMemberService) List(ctx context.Context) ([]domain.Member, error) {
	return s.listFn(ctx)
}

func (s *stubMemberService) AllowedRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.allowedFn(ctx, userID)
}

func (s *stubMemberService) ChangeRole(ctx context.Context, userID uuid.UUID, role string) error {
	return s.changeRoleFn(ctx, userID, role)
}

func (s *stubMemberService) Remove(ctx context.Context, userID uuid.UUID) error {
	return s.removeFn(ctx, userID)
}

func (s *stubMemberService) Leave(ctx context.Context) error {
	return s.leaveFn(ctx)
}
