package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/infrastructure/metrics"
)

// TenantSwitchService rebinds a user's session to another tenant they belong to.
type TenantSwitchService struct {
	memberships ports.MembershipRepository
	provider    *OAuth2AuthenticationProvider
	sessions    ports.SessionStore
	events      ports.AuthEventDispatcher
	log         zerolog.Logger
	now         func() time.Time
}

func NewTenantSwitchService(
	memberships ports.MembershipRepository,
	provider *OAuth2AuthenticationProvider,
	sessions ports.SessionStore,
	events ports.AuthEventDispatcher,
	log zerolog.Logger,
) *TenantSwitchService {
	return &TenantSwitchService{
		memberships: memberships,
		provider:    provider,
		sessions:    sessions,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// SwitchTenant checks that the calling user is a member of tenantID and, if
// so, replaces the session principal with one bound to that tenant. The
// previous principal is left untouched.
func (s *TenantSwitchService) SwitchTenant(ctx context.Context, sessionID string, tenantID uuid.UUID) (domain.TenantSwitchResult, *domain.Session, error) {
	current, err := identity.Principal(ctx)
	if err != nil {
		return "", nil, err
	}

	tenantIDs, err := s.memberships.TenantIDs(ctx, current.User().ID)
	if err != nil {
		return "", nil, fmt.Errorf("switch tenant: %w", err)
	}
	if !containsID(tenantIDs, tenantID) {
		metrics.TenantSwitchesTotal.WithLabelValues(string(domain.TenantSwitchNotAllowed)).Inc()
		s.log.Warn().
			Str("user_id", current.User().ID.String()).
			Str("tenant_id", tenantID.String()).
			Msg("tenant switch not allowed")
		return domain.TenantSwitchNotAllowed, nil, nil
	}

	principal, err := s.provider.Build(ctx, current.Upstream(), current.ProviderRegistrationID(), &tenantID)
	if err != nil {
		return "", nil, fmt.Errorf("switch tenant: %w", err)
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("switch tenant: %w", err)
	}
	switched := &domain.Session{
		ID:        sess.ID,
		Principal: principal,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	if err := s.sessions.Replace(ctx, switched); err != nil {
		return "", nil, fmt.Errorf("switch tenant: %w", err)
	}

	metrics.TenantSwitchesTotal.WithLabelValues(string(domain.TenantChanged)).Inc()
	s.events.Enqueue(domain.AuthEvent{
		Type:           domain.EventTenantSwitch,
		UserID:         principal.User().ID,
		TenantID:       principal.Tenant().ID,
		RegistrationID: principal.ProviderRegistrationID(),
		Subject:        principal.Name(),
		Detail:         "from " + current.Tenant().ID.String(),
		OccurredAt:     s.now().UTC(),
	})

	return domain.TenantChanged, switched, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
