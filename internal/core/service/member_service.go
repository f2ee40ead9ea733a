package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/infrastructure/metrics"
)

// MemberService changes who belongs to the caller's tenant and with which
// role. A tenant always keeps at least one owner, and only owners may grant,
// revoke or remove the OWNER role.
type MemberService struct {
	users       ports.UserRepository
	memberships ports.MembershipRepository
	tx          ports.Transactor
	events      ports.AuthEventDispatcher
	log         zerolog.Logger
	now         func() time.Time
}

func NewMemberService(
	users ports.UserRepository,
	memberships ports.MembershipRepository,
	tx ports.Transactor,
	events ports.AuthEventDispatcher,
	log zerolog.Logger,
) *MemberService {
	return &MemberService{
		users:       users,
		memberships: memberships,
		tx:          tx,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// List returns the members of the current tenant in order of joining.
func (s *MemberService) List(ctx context.Context) ([]domain.Member, error) {
	tenant, err := identity.Tenant(ctx)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships.Members(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	order := make([]uuid.UUID, 0, len(memberships))
	roles := make(map[uuid.UUID][]string)
	for _, m := range memberships {
		if _, ok := roles[m.UserID]; !ok {
			order = append(order, m.UserID)
		}
		roles[m.UserID] = append(roles[m.UserID], m.Role)
	}

	members := make([]domain.Member, 0, len(order))
	for _, id := range order {
		user, err := s.users.FindByID(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Str("user_id", id.String()).Str("tenant_id", tenant.ID.String()).Msg("membership without user")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		members = append(members, domain.Member{User: user, Roles: roles[id]})
	}
	return members, nil
}

// AllowedRoles lists the roles the caller may give to userID.
func (s *MemberService) AllowedRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	tenant, err := identity.Tenant(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.load(ctx, userID, tenant.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case target.lastOwner():
		return []string{domain.RoleOwner}, nil
	case !identity.HasRole(ctx, domain.RoleOwner) && target.owner():
		return []string{domain.RoleOwner}, nil
	case !identity.HasRole(ctx, domain.RoleOwner):
		return []string{domain.RoleUser, domain.RoleAdmin}, nil
	default:
		return []string{domain.RoleUser, domain.RoleAdmin, domain.RoleOwner}, nil
	}
}

// ChangeRole makes role the only role of userID in the current tenant.
func (s *MemberService) ChangeRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !domain.IsTenantRole(role) {
		return fmt.Errorf("change role: %w", domain.InvalidArgument("unknown role %q", role))
	}
	actor, tenant, err := s.caller(ctx)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := s.load(ctx, userID, tenant.ID)
		if err != nil {
			return err
		}

		changesOwnership := (role == domain.RoleOwner) != target.owner()
		if changesOwnership && !identity.HasRole(ctx, domain.RoleOwner) {
			return domain.Deny(domain.DenialOnlyOwnerCanGrantOrRevokeOwner)
		}
		if target.lastOwner() && role != domain.RoleOwner {
			return domain.Deny(domain.DenialLastOwnerRoleCannotBeChanged)
		}
		return s.memberships.ReplaceRoles(ctx, userID, tenant.ID, []string{role})
	})
	if err != nil {
		s.failed("change_role", err)
		return fmt.Errorf("change role: %w", err)
	}

	s.done("change_role", domain.EventMemberRoleChanged, actor, tenant, userID, role)
	return nil
}

// Remove takes userID out of the current tenant.
func (s *MemberService) Remove(ctx context.Context, userID uuid.UUID) error {
	actor, tenant, err := s.caller(ctx)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := s.load(ctx, userID, tenant.ID)
		if err != nil {
			return err
		}
		if target.owner() {
			if !identity.HasRole(ctx, domain.RoleOwner) {
				return domain.Deny(domain.DenialOnlyOwnerCanRemoveOwner)
			}
			if target.lastOwner() {
				return domain.Deny(domain.DenialLastOwnerCannotBeRemoved)
			}
		}
		_, err = s.memberships.Remove(ctx, userID, tenant.ID)
		return err
	})
	if err != nil {
		s.failed("remove", err)
		return fmt.Errorf("remove member: %w", err)
	}

	s.done("remove", domain.EventMemberRemoved, actor, tenant, userID, "")
	return nil
}

// Leave takes the caller out of the current tenant.
func (s *MemberService) Leave(ctx context.Context) error {
	actor, tenant, err := s.caller(ctx)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		self, err := s.load(ctx, actor.ID, tenant.ID)
		if err != nil {
			return err
		}
		if self.lastOwner() {
			return domain.Deny(domain.DenialLastOwnerCannotLeave)
		}
		_, err = s.memberships.Remove(ctx, actor.ID, tenant.ID)
		return err
	})
	if err != nil {
		s.failed("leave", err)
		return fmt.Errorf("leave tenant: %w", err)
	}

	s.done("leave", domain.EventMemberLeft, actor, tenant, actor.ID, "")
	return nil
}

func (s *MemberService) caller(ctx context.Context) (*domain.User, *domain.Tenant, error) {
	user, err := identity.User(ctx)
	if err != nil {
		return nil, nil, err
	}
	tenant, err := identity.Tenant(ctx)
	if err != nil {
		return nil, nil, err
	}
	return user, tenant, nil
}

// memberState is what the membership rules need to know about one user.
type memberState struct {
	roles  []string
	owners int
}

func (m memberState) owner() bool     { return domain.HasRole(m.roles, domain.RoleOwner) }
func (m memberState) lastOwner() bool { return m.owner() && m.owners == 1 }

func (s *MemberService) load(ctx context.Context, userID, tenantID uuid.UUID) (memberState, error) {
	roles, err := s.memberships.Roles(ctx, userID, tenantID)
	if err != nil {
		return memberState{}, err
	}
	if len(roles) == 0 {
		return memberState{}, domain.ErrMemberNotFound
	}
	owners, err := s.memberships.CountOwners(ctx, tenantID)
	if err != nil {
		return memberState{}, err
	}
	return memberState{roles: roles, owners: owners}, nil
}

func (s *MemberService) failed(operation string, err error) {
	result := "error"
	if errors.Is(err, domain.ErrMemberOperationDenied) || errors.Is(err, domain.ErrMemberNotFound) {
		result = "denied"
	}
	metrics.MemberOperationsTotal.WithLabelValues(operation, result).Inc()
	s.log.Warn().Err(err).Str("operation", operation).Msg("member operation rejected")
}

func (s *MemberService) done(operation string, event domain.AuthEventType, actor *domain.User, tenant *domain.Tenant, target uuid.UUID, detail string) {
	metrics.MemberOperationsTotal.WithLabelValues(operation, "ok").Inc()
	if detail == "" {
		detail = "by " + actor.ID.String()
	} else {
		detail += " by " + actor.ID.String()
	}
	s.events.Enqueue(domain.AuthEvent{
		Type:       event,
		UserID:     target,
		TenantID:   tenant.ID,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	})
	s.log.Info().
		Str("operation", operation).
		Str("tenant_id", tenant.ID.String()).
		Str("user_id", target.String()).
		Str("actor_id", actor.ID.String()).
		Msg("membership changed")
}
