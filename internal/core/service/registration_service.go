package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/core/validation"
)

// initialOwnerRoles are granted to whoever registers a new tenant.
var initialOwnerRoles = []string{domain.RoleOwner}

// RegistrationService creates a new tenant together with its first user.
type RegistrationService struct {
	users       ports.UserRepository
	tenants     ports.TenantRepository
	memberships ports.MembershipRepository
	tx          ports.Transactor
	log         zerolog.Logger
	now         func() time.Time
}

func NewRegistrationService(
	users ports.UserRepository,
	tenants ports.TenantRepository,
	memberships ports.MembershipRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:       users,
		tenants:     tenants,
		memberships: memberships,
		tx:          tx,
		log:         log,
		now:         time.Now,
	}
}

func (s *RegistrationService) Register(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("register: %w", domain.InvalidArgument("name must not be empty"))
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("register: %w", domain.InvalidArgument("email must be a valid email"))
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     in.Email,
		CreatedAt: now,
	}
	tenant := &domain.Tenant{
		ID:               uuid.New(),
		OrganizationName: strings.TrimSpace(in.Organization),
		CreatedAt:        now,
	}

	// The user goes first: a concurrent sign-up with the same email fails on
	// the unique index before anything else is written.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if err := s.tenants.Create(ctx, tenant); err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		for _, role := range initialOwnerRoles {
			m := &domain.Membership{UserID: user.ID, TenantID: tenant.ID, Role: role, CreatedAt: now}
			if err := s.memberships.Insert(ctx, m); err != nil {
				return fmt.Errorf("grant %s: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("tenant_id", tenant.ID.String()).
		Msg("tenant registered")

	return &ports.RegistrationResult{User: user, Tenant: tenant}, nil
}
