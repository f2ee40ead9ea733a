package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

func TestAuthenticationDetails_Load_FirstTenant(t *testing.T) {
	f := newFixture()

	details, err := f.details.Load(context.Background(), "alice@example.com", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if details.User != f.alice {
		t.Errorf("expected alice, got %+v", details.User)
	}
	if details.Tenant != f.acme {
		t.Errorf("expected first tenant acme, got %+v", details.Tenant)
	}
	if len(details.Roles) != 1 || details.Roles[0] != "ROLE_OWNER" {
		t.Errorf("expected [ROLE_OWNER], got %v", details.Roles)
	}
}

func TestAuthenticationDetails_Load_DesiredTenant(t *testing.T) {
	f := newFixture()

	details, err := f.details.Load(context.Background(), "alice@example.com", &f.globex.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if details.Tenant != f.globex {
		t.Errorf("expected globex, got %+v", details.Tenant)
	}
	if len(details.Roles) != 1 || details.Roles[0] != "ROLE_USER" {
		t.Errorf("expected [ROLE_USER], got %v", details.Roles)
	}
}

func TestAuthenticationDetails_Load_Errors(t *testing.T) {
	f := newFixture()
	bob := &domain.User{ID: uuid.New(), Email: "bob@example.com"}
	f.users.byEmail[bob.Email] = bob
	stranger := uuid.New()

	tests := []struct {
		name    string
		email   string
		desired *uuid.UUID
		want    error
	}{
		{name: "unknown user", email: "nobody@example.com", want: domain.ErrUserNotFound},
		{name: "user without tenants", email: "bob@example.com", want: domain.ErrNoTenantFound},
		{name: "tenant without roles", email: "alice@example.com", desired: &stranger, want: domain.ErrNoRolesFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.details.Load(context.Background(), tt.email, tt.desired)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestOAuth2Provider_Build_MergesAuthorities(t *testing.T) {
	f := newFixture()
	upstream := upstreamUser("alice@example.com")

	p, err := f.provider.Build(context.Background(), upstream, "google", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	for _, want := range []string{"OAUTH2_USER", "SCOPE_email", "ROLE_OWNER"} {
		if !p.HasAuthority(want) {
			t.Errorf("expected authority %s in %v", want, p.Authorities())
		}
	}
	if p.User() != f.alice || p.Tenant() != f.acme {
		t.Errorf("unexpected binding: user=%v tenant=%v", p.User(), p.Tenant())
	}
	if p.Upstream() != upstream {
		t.Errorf("expected upstream principal to be kept")
	}
	if p.ProviderRegistrationID() != "google" {
		t.Errorf("expected registration google, got %s", p.ProviderRegistrationID())
	}
}

func TestOAuth2Provider_Build_RequiresEmail(t *testing.T) {
	f := newFixture()

	_, err := f.provider.Build(context.Background(), upstreamUser(""), "google", nil)
	if !errors.Is(err, domain.ErrEmailNotProvided) {
		t.Fatalf("expected ErrEmailNotProvided, got: %v", err)
	}

	_, err = f.provider.Build(context.Background(), nil, "google", nil)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestOAuth2Provider_Build_ConfirmsVerifiedEmail(t *testing.T) {
	f := newFixture()
	upstream, err := domain.NewOAuth2User("sub-123",
		map[string]any{"email": "alice@example.com", "email_verified": true}, nil)
	if err != nil {
		t.Fatalf("upstream: %v", err)
	}

	p, err := f.provider.Build(context.Background(), upstream, "google", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !p.User().EmailVerified {
		t.Errorf("expected email marked verified")
	}
	if len(f.users.verified) != 1 || f.users.verified[0] != f.alice.ID {
		t.Errorf("expected one verification write, got %v", f.users.verified)
	}

	if _, err := f.provider.Build(context.Background(), upstream, "google", nil); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if len(f.users.verified) != 1 {
		t.Errorf("expected no repeated write for a verified user")
	}
}

func TestOAuth2Provider_Build_UnverifiedEmailUntouched(t *testing.T) {
	f := newFixture()

	p, err := f.provider.Build(context.Background(), upstreamUser("alice@example.com"), "google", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if p.User().EmailVerified || len(f.users.verified) != 0 {
		t.Errorf("expected email left unverified")
	}
}
