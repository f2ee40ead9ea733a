package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

type stubAuthService struct {
	sessions map[string]*domain.Session
	err      error
}

func (s *stubAuthService) Login(context.Context, string, string) (*domain.Session, error) {
	return nil, nil
}

func (s *stubAuthService) Authenticate(_ context.Context, id string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubAuthService) Logout(context.Context, string) error { return nil }

type stubAPIKeyService struct {
	keys map[string]*domain.TenantAPIKeyAuthentication
}

func (s *stubAPIKeyService) Issue(context.Context) (*ports.IssuedAPIKey, error) { return nil, nil }

func (s *stubAPIKeyService) Describe(context.Context) (*domain.TenantAPIKey, error) { return nil, nil }

func (s *stubAPIKeyService) Authenticate(_ context.Context, raw string) (*domain.TenantAPIKeyAuthentication, error) {
	a, ok := s.keys[raw]
	if !ok {
		return nil, domain.ErrInvalidAPIKey
	}
	return a, nil
}

func newPrincipal(t *testing.T, roles ...string) *domain.AuthenticatedPrincipal {
	t.Helper()
	upstream, err := domain.NewOAuth2User("sub-1", map[string]any{"email": "alice@example.com"}, nil)
	if err != nil {
		t.Fatalf("upstream: %v", err)
	}
	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, domain.RoleAuthority(r))
	}
	p, err := domain.NewAuthenticatedPrincipal(upstream, authorities, "google",
		&domain.User{ID: uuid.New()}, &domain.Tenant{ID: uuid.New()})
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	return p
}

func newSession(t *testing.T, id string, roles ...string) *domain.Session {
	t.Helper()
	now := time.Now()
	return &domain.Session{ID: id, Principal: newPrincipal(t, roles...), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
}
