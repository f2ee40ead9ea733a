package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthEventType names an entry of the authentication audit trail.
type AuthEventType string

const (
	EventLogin        AuthEventType = "login"
	EventLoginFailed  AuthEventType = "login_failed"
	EventLogout       AuthEventType = "logout"
	EventTenantSwitch AuthEventType = "tenant_switch"
	EventAPIKeyIssued AuthEventType = "api_key_issued"

	EventMemberRoleChanged AuthEventType = "member_role_changed"
	EventMemberRemoved     AuthEventType = "member_removed"
	EventMemberLeft        AuthEventType = "member_left"
)

// AuthEvent is one audit trail record. UserID and TenantID are uuid.Nil when
// unknown (e.g. a failed login).
type AuthEvent struct {
	Type           AuthEventType
	UserID         uuid.UUID
	TenantID       uuid.UUID
	RegistrationID string
	Subject        string
	Detail         string
	OccurredAt     time.Time
}

// ShardKey groups events of the same subject so they are recorded in order.
func (e AuthEvent) ShardKey() string {
	if e.UserID != uuid.Nil {
		return e.UserID.String()
	}
	if e.TenantID != uuid.Nil {
		return e.TenantID.String()
	}
	return e.RegistrationID + ":" + e.Subject
}
