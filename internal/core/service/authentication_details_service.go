package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

// AuthenticationDetailsService resolves which internal user, tenant and roles
// an external identity corresponds to.
type AuthenticationDetailsService struct {
	users       ports.UserRepository
	tenants     ports.TenantRepository
	memberships ports.MembershipRepository
}

func NewAuthenticationDetailsService(
	users ports.UserRepository,
	tenants ports.TenantRepository,
	memberships ports.MembershipRepository,
) *AuthenticationDetailsService {
	return &AuthenticationDetailsService{users: users, tenants: tenants, memberships: memberships}
}

// Load resolves details for email. When desiredTenantID is nil the user's
// first tenant is used. A tenant in which the user holds no role is rejected
// with ErrNoRolesFound.
func (s *AuthenticationDetailsService) Load(ctx context.Context, email string, desiredTenantID *uuid.UUID) (*domain.AuthenticationDetails, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load authentication details: %w", err)
	}

	tenantID := uuid.Nil
	if desiredTenantID != nil {
		tenantID = *desiredTenantID
	} else {
		tenantID, err = s.memberships.FirstTenantID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("load authentication details for %s: %w", email, err)
		}
	}

	roles, err := s.memberships.Roles(ctx, user.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("load authentication details for %s in %s: %w", email, tenantID, domain.ErrNoRolesFound)
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}

	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, domain.RoleAuthority(r))
	}

	return &domain.AuthenticationDetails{
		User:   user,
		Tenant: tenant,
		Roles:  authorities,
	}, nil
}

// ConfirmEmail marks the user's email address as verified.
func (s *AuthenticationDetailsService) ConfirmEmail(ctx context.Context, user *domain.User) error {
	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	user.EmailVerified = true
	return nil
}
