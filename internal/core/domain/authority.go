package domain

import (
	"sort"
	"strings"
)

const rolePrefix = "ROLE_"

// RoleAuthority converts a tenant role into its granted-authority label.
func RoleAuthority(role string) string {
	return rolePrefix + role
}

// RolesOf extracts role names from ROLE_ prefixed authorities.
func RolesOf(authorities []string) []string {
	roles := make([]string, 0, len(authorities))
	for _, a := range authorities {
		if strings.HasPrefix(a, rolePrefix) {
			roles = append(roles, strings.TrimPrefix(a, rolePrefix))
		}
	}
	return roles
}

// authoritySet returns a sorted, de-duplicated copy; blank labels are dropped.
func authoritySet(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, g := range groups {
		for _, a := range g {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

func containsAuthority(set []string, a string) bool {
	i := sort.SearchStrings(set, a)
	return i < len(set) && set[i] == a
}
