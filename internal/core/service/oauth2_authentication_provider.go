package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

// OAuth2AuthenticationProvider turns a verified upstream login into a
// tenant-bound principal.
type OAuth2AuthenticationProvider struct {
	details *AuthenticationDetailsService
}

func NewOAuth2AuthenticationProvider(details *AuthenticationDetailsService) *OAuth2AuthenticationProvider {
	return &OAuth2AuthenticationProvider{details: details}
}

// Build resolves the user behind upstream's email attribute and binds the
// desired (or first) tenant. Granted authorities are the upstream ones plus
// the user's roles in that tenant. An email the provider reports as verified
// confirms the user's address on first use.
func (p *OAuth2AuthenticationProvider) Build(
	ctx context.Context,
	upstream *domain.OAuth2User,
	registrationID string,
	desiredTenantID *uuid.UUID,
) (*domain.AuthenticatedPrincipal, error) {
	if upstream == nil {
		return nil, fmt.Errorf("build principal: %w: upstream principal is required", domain.ErrInvalidArgument)
	}

	email := upstream.Email()
	if email == "" {
		return nil, domain.ErrEmailNotProvided
	}

	details, err := p.details.Load(ctx, email, desiredTenantID)
	if err != nil {
		return nil, err
	}
	if upstream.EmailVerified() && !details.User.EmailVerified {
		if err := p.details.ConfirmEmail(ctx, details.User); err != nil {
			return nil, err
		}
	}

	authorities := append(upstream.Authorities(), details.Roles...)
	return domain.NewAuthenticatedPrincipal(upstream, authorities, registrationID, details.User, details.Tenant)
}
