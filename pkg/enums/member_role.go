package enums

import "fmt"

// MemberRole is the role a user holds within a supplier account. Owners and
// managers can mutate packages and bookings; staff is read-mostly.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "owner"
	MemberRoleManager MemberRole = "manager"
	MemberRoleStaff   MemberRole = "staff"
)

var memberRoles = map[MemberRole]struct{}{
	MemberRoleOwner:   {},
	MemberRoleManager: {},
	MemberRoleStaff:   {},
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	_, ok := memberRoles[m]
	return ok
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	role := MemberRole(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid member role %q", value)
	}
	return role, nil
}
