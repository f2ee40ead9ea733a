package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant roles stored on memberships. Authorities carry them as ROLE_<role>.
const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the internal identity record an external login resolves to.
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Tenant is the organisation a session is scoped to.
type Tenant struct {
	ID               uuid.UUID `json:"id"`
	OrganizationName string    `json:"organization_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Membership grants a user one role inside a tenant. A user holding several
// roles in the same tenant has one membership per role.
type Membership struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Role      string
	CreatedAt time.Time
}

// AuthenticationDetails is what the application knows about an external
// identity once user and tenant have been resolved.
type AuthenticationDetails struct {
	User   *User
	Tenant *Tenant
	Roles  []string // ROLE_ prefixed authorities
}
