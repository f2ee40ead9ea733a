package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a missing collaborator at a construction site or a
// malformed input value. It aborts the calling flow.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError is an ErrInvalidArgument whose Detail may be shown to clients.
type ArgumentError struct {
	Detail string
}

func (e *ArgumentError) Error() string        { return ErrInvalidArgument.Error() + ": " + e.Detail }
func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// InvalidArgument formats an ArgumentError.
func InvalidArgument(format string, args ...any) error {
	return &ArgumentError{Detail: fmt.Sprintf(format, args...)}
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrNoTenantFound         = errors.New("no tenant found for user")
	ErrNoRolesFound          = errors.New("no roles found for user and tenant")
	ErrEmailNotProvided      = errors.New("email attribute not provided by upstream login")
	ErrNoAuthenticatedUser   = errors.New("no user context available")
	ErrNoAuthenticatedTenant = errors.New("no tenant context available")
	ErrUnknownAuthentication = errors.New("unknown authentication")
	ErrForbidden             = errors.New("access forbidden")
	ErrMemberNotFound        = errors.New("user is not a member of the tenant")
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidAPIKey        = errors.New("invalid api key")
	ErrAPIKeyNotFound       = errors.New("api key not found")
	ErrUnknownRegistration  = errors.New("unknown provider registration")
	ErrInvalidUpstreamToken = errors.New("invalid upstream login assertion")
	ErrTokenReplayed        = errors.New("upstream login assertion already used")
	// ErrLoginDenied wraps the account resolution failures of a login so
	// callers cannot tell a missing account from one without tenant access.
	ErrLoginDenied = errors.New("login denied")
)
