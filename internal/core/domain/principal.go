package domain

import (
	"fmt"
	"strings"
)

// AuthenticationMethod tells how a request was authenticated.
type AuthenticationMethod string

const (
	MethodOAuth2 AuthenticationMethod = "oauth2"
	MethodAPIKey AuthenticationMethod = "api_key"
)

// Authentication is the result of any successful authentication.
type Authentication interface {
	Name() string
	Authorities() []string
	Method() AuthenticationMethod
}

// TenantBound is an authentication scoped to a tenant.
type TenantBound interface {
	Authentication
	Tenant() *Tenant
}

// AuthenticatedContext is what request handlers query to learn who is calling
// and for which tenant.
type AuthenticatedContext interface {
	TenantBound
	User() *User
}

// OAuth2User is the principal asserted by an upstream identity provider.
type OAuth2User struct {
	name        string
	attributes  map[string]any
	authorities []string
}

// NewOAuth2User copies attributes and authorities so later changes by the
// caller are not observed.
func NewOAuth2User(name string, attributes map[string]any, authorities []string) (*OAuth2User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: upstream principal name is required", ErrInvalidArgument)
	}
	attrs := make(map[string]any, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return &OAuth2User{
		name:        name,
		attributes:  attrs,
		authorities: authoritySet(authorities),
	}, nil
}

// Name is the provider-scoped subject.
func (u *OAuth2User) Name() string { return u.name }

func (u *OAuth2User) Attribute(key string) any { return u.attributes[key] }

// Attributes returns a copy of all upstream attributes.
func (u *OAuth2User) Attributes() map[string]any {
	out := make(map[string]any, len(u.attributes))
	for k, v := range u.attributes {
		out[k] = v
	}
	return out
}

// Email returns the email attribute, or "" when absent or not a string.
func (u *OAuth2User) Email() string {
	email, _ := u.attributes["email"].(string)
	return email
}

// EmailVerified reports whether the provider vouched for the email address.
func (u *OAuth2User) EmailVerified() bool {
	verified, _ := u.attributes["email_verified"].(bool)
	return verified
}

func (u *OAuth2User) Authorities() []string {
	return append([]string(nil), u.authorities...)
}

// AuthenticatedPrincipal binds an upstream login to the internal user and the
// tenant the session is scoped to. It is created once per successful login
// and never modified; switching tenant produces a new value.
type AuthenticatedPrincipal struct {
	upstream       *OAuth2User
	authorities    []string
	registrationID string
	user           *User
	tenant         *Tenant
}

var _ AuthenticatedContext = (*AuthenticatedPrincipal)(nil)

// NewAuthenticatedPrincipal fails with ErrInvalidArgument when any of the
// collaborators is missing. user and tenant in particular must never be nil:
// every authorization decision downstream depends on both.
func NewAuthenticatedPrincipal(
	upstream *OAuth2User,
	authorities []string,
	registrationID string,
	user *User,
	tenant *Tenant,
) (*AuthenticatedPrincipal, error) {
	switch {
	case upstream == nil:
		return nil, fmt.Errorf("%w: upstream principal is required", ErrInvalidArgument)
	case strings.TrimSpace(registrationID) == "":
		return nil, fmt.Errorf("%w: provider registration id is required", ErrInvalidArgument)
	case user == nil:
		return nil, fmt.Errorf("%w: user is required", ErrInvalidArgument)
	case tenant == nil:
		return nil, fmt.Errorf("%w: tenant is required", ErrInvalidArgument)
	}

	return &AuthenticatedPrincipal{
		upstream:       upstream,
		authorities:    authoritySet(authorities),
		registrationID: registrationID,
		user:           user,
		tenant:         tenant,
	}, nil
}

func (p *AuthenticatedPrincipal) User() *User     { return p.user }
func (p *AuthenticatedPrincipal) Tenant() *Tenant { return p.tenant }

// Name mirrors the upstream subject.
func (p *AuthenticatedPrincipal) Name() string { return p.upstream.Name() }

func (p *AuthenticatedPrincipal) Upstream() *OAuth2User          { return p.upstream }
func (p *AuthenticatedPrincipal) ProviderRegistrationID() string { return p.registrationID }
func (p *AuthenticatedPrincipal) Method() AuthenticationMethod   { return MethodOAuth2 }

// Authorities returns a copy; the principal's own set cannot be changed.
func (p *AuthenticatedPrincipal) Authorities() []string {
	return append([]string(nil), p.authorities...)
}

func (p *AuthenticatedPrincipal) HasAuthority(authority string) bool {
	return containsAuthority(p.authorities, authority)
}

// Roles lists the tenant roles carried as ROLE_ authorities.
func (p *AuthenticatedPrincipal) Roles() []string {
	return RolesOf(p.authorities)
}
