package domain

import (
	"errors"
	"fmt"
)

// ErrMemberOperationDenied is matched by every *MemberOperationError.
var ErrMemberOperationDenied = errors.New("member operation denied")

// DenialReason explains why a membership change was refused.
type DenialReason string

const (
	DenialLastOwnerCannotLeave           DenialReason = "LAST_OWNER_CANNOT_LEAVE"
	DenialLastOwnerCannotBeRemoved       DenialReason = "LAST_OWNER_CANNOT_BE_REMOVED"
	DenialLastOwnerRoleCannotBeChanged   DenialReason = "LAST_OWNER_ROLE_CANNOT_BE_CHANGED"
	DenialOnlyOwnerCanGrantOrRevokeOwner DenialReason = "ONLY_OWNER_CAN_GRANT_OR_REVOKE_OWNER_ROLE"
	DenialOnlyOwnerCanRemoveOwner        DenialReason = "ONLY_OWNER_CAN_REMOVE_OWNER"
)

// MemberOperationError is returned when a tenant membership rule forbids
// the requested change.
type MemberOperationError struct {
	Reason DenialReason
}

func (e *MemberOperationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMemberOperationDenied, e.Reason)
}

func (e *MemberOperationError) Is(target error) bool {
	return target == ErrMemberOperationDenied
}

// Deny builds the error for reason.
func Deny(reason DenialReason) error {
	return &MemberOperationError{Reason: reason}
}

// Member is a user together with its roles in one tenant.
type Member struct {
	User  *User    `json:"user"`
	Roles []string `json:"roles"`
}

// IsTenantRole reports whether role can be stored on a membership.
func IsTenantRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// HasRole reports whether roles contains role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
