package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/infrastructure/metrics"
)

const defaultSessionTTL = 8 * time.Hour

// AuthService completes logins into sessions and manages their lifetime.
type AuthService struct {
	verifier ports.UpstreamVerifier
	replay   ports.ReplayGuard
	provider *OAuth2AuthenticationProvider
	sessions ports.SessionStore
	events   ports.AuthEventDispatcher
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	verifier ports.UpstreamVerifier,
	replay ports.ReplayGuard,
	provider *OAuth2AuthenticationProvider,
	sessions ports.SessionStore,
	events ports.AuthEventDispatcher,
	ttl time.Duration,
	log zerolog.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		verifier: verifier,
		replay:   replay,
		provider: provider,
		sessions: sessions,
		events:   events,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies the upstream assertion, resolves user and tenant and stores
// the resulting principal in a new session. Any failure aborts the login;
// no session is created for a principal that could not be fully bound.
func (s *AuthService) Login(ctx context.Context, registrationID, assertion string) (*domain.Session, error) {
	login, err := s.verifier.Verify(ctx, registrationID, assertion)
	if err != nil {
		s.loginFailed(registrationID, "", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.claim(ctx, registrationID, login); err != nil {
		s.loginFailed(registrationID, login.User.Name(), err)
		return nil, fmt.Errorf("login: %w", err)
	}

	principal, err := s.provider.Build(ctx, login.User, registrationID, nil)
	if err != nil {
		s.loginFailed(registrationID, login.User.Name(), err)
		if accountUnresolved(err) {
			return nil, fmt.Errorf("login: %w: %w", domain.ErrLoginDenied, err)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        id,
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("registration", registrationID).Msg("failed to store session")
		return nil, fmt.Errorf("login: store session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(registrationID, "success").Inc()
	s.events.Enqueue(domain.AuthEvent{
		Type:           domain.EventLogin,
		UserID:         principal.User().ID,
		TenantID:       principal.Tenant().ID,
		RegistrationID: registrationID,
		Subject:        principal.Name(),
		OccurredAt:     now,
	})

	s.log.Info().
		Str("registration", registrationID).
		Str("user_id", principal.User().ID.String()).
		Str("tenant_id", principal.Tenant().ID.String()).
		Msg("login completed")

	return sess, nil
}

// Authenticate returns the live session for sessionID. Expired sessions are
// removed and reported as not found.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Logout discards the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	p := sess.Principal
	s.events.Enqueue(domain.AuthEvent{
		Type:           domain.EventLogout,
		UserID:         p.User().ID,
		TenantID:       p.Tenant().ID,
		RegistrationID: p.ProviderRegistrationID(),
		Subject:        p.Name(),
		OccurredAt:     s.now().UTC(),
	})
	return nil
}

// claim marks the assertion as used. Assertions without a token id cannot be
// tracked and are rejected; a guard failure rejects the login too.
func (s *AuthService) claim(ctx context.Context, registrationID string, login *ports.UpstreamLogin) error {
	if login.TokenID == "" {
		return fmt.Errorf("%w: missing token id", domain.ErrInvalidUpstreamToken)
	}
	ttl := login.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		ttl = s.ttl
	}
	fresh, err := s.replay.Claim(ctx, registrationID, login.TokenID, ttl)
	if err != nil {
		return fmt.Errorf("replay check: %w", err)
	}
	if !fresh {
		return domain.ErrTokenReplayed
	}
	return nil
}

func (s *AuthService) loginFailed(registrationID, subject string, cause error) {
	label := registrationID
	if errors.Is(cause, domain.ErrUnknownRegistration) {
		label = "unknown"
	}
	metrics.LoginsTotal.WithLabelValues(label, loginFailureReason(cause)).Inc()

	s.events.Enqueue(domain.AuthEvent{
		Type:           domain.EventLoginFailed,
		RegistrationID: label,
		Subject:        subject,
		Detail:         cause.Error(),
		OccurredAt:     s.now().UTC(),
	})
	s.log.Warn().Err(cause).Str("registration", registrationID).Msg("login rejected")
}

func accountUnresolved(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrNoTenantFound) ||
		errors.Is(err, domain.ErrNoRolesFound)
}

func loginFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownRegistration):
		return "unknown_registration"
	case errors.Is(err, domain.ErrInvalidUpstreamToken):
		return "invalid_assertion"
	case errors.Is(err, domain.ErrTokenReplayed):
		return "replayed"
	case errors.Is(err, domain.ErrEmailNotProvided):
		return "email_missing"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrNoTenantFound), errors.Is(err, domain.ErrNoRolesFound):
		return "no_tenant_access"
	default:
		return "error"
	}
}

// newSessionID returns 256 bits of randomness, URL-safe.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
