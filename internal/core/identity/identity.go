// Package identity resolves who is calling, and for which tenant, from the
// authentication attached to a request context.
package identity

import (
	"context"

	"github.com/baf/identity-service/internal/core/domain"
)

type authenticationKey struct{}

// WithAuthentication returns a copy of ctx carrying a.
func WithAuthentication(ctx context.Context, a domain.Authentication) context.Context {
	return context.WithValue(ctx, authenticationKey{}, a)
}

// FromContext returns the authentication attached to ctx, if any.
func FromContext(ctx context.Context) (domain.Authentication, bool) {
	a, ok := ctx.Value(authenticationKey{}).(domain.Authentication)
	return a, ok && a != nil
}

// User returns the authenticated user. API-key requests have a tenant but no
// user and yield ErrNoAuthenticatedUser.
func User(ctx context.Context) (*domain.User, error) {
	a, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}
	switch a := a.(type) {
	case domain.AuthenticatedContext:
		return a.User(), nil
	case *domain.TenantAPIKeyAuthentication:
		return nil, domain.ErrNoAuthenticatedUser
	default:
		return nil, domain.ErrUnknownAuthentication
	}
}

// Tenant returns the tenant the request is scoped to.
func Tenant(ctx context.Context) (*domain.Tenant, error) {
	a, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedTenant
	}
	tb, ok := a.(domain.TenantBound)
	if !ok {
		return nil, domain.ErrUnknownAuthentication
	}
	return tb.Tenant(), nil
}

// Principal returns the login principal of a user session.
func Principal(ctx context.Context) (*domain.AuthenticatedPrincipal, error) {
	a, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}
	p, ok := a.(*domain.AuthenticatedPrincipal)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}
	return p, nil
}

// Authorities returns the granted authorities, empty when unauthenticated.
func Authorities(ctx context.Context) []string {
	a, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return a.Authorities()
}

// Roles returns tenant roles with the ROLE_ prefix stripped.
func Roles(ctx context.Context) []string {
	return domain.RolesOf(Authorities(ctx))
}

func HasRole(ctx context.Context, role string) bool {
	for _, r := range Roles(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether at least one of roles is granted.
func HasAnyRole(ctx context.Context, roles ...string) bool {
	for _, r := range roles {
		if HasRole(ctx, r) {
			return true
		}
	}
	return false
}
