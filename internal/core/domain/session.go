package domain

import "time"

// SessionCookieName is the cookie carrying the session id for browser clients.
const SessionCookieName = "session"

// Session holds the principal produced at login for the session's lifetime.
type Session struct {
	ID        string
	Principal *AuthenticatedPrincipal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TenantSwitchResult is the outcome of a tenant switch request.
type TenantSwitchResult string

const (
	TenantChanged          TenantSwitchResult = "tenant_changed"
	TenantSwitchNotAllowed TenantSwitchResult = "not_allowed"
)
