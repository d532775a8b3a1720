package domain

import (
	"fmt"
)

// MemberRole is the privilege level of a project membership.
// Roles are compared by the rank table below, never by their labels or declaration order.
type MemberRole string

const (
	MemberRoleViewer = MemberRole("viewer")
	MemberRoleEditor = MemberRole("editor")
	MemberRoleAdmin  = MemberRole("admin")
)

var memberRoleRanks = map[MemberRole]int{
	MemberRoleViewer: 10,
	MemberRoleEditor: 20,
	MemberRoleAdmin:  30,
}

// MemberRoles returns all member roles, lowest privilege first.
func MemberRoles() []MemberRole {
	return []MemberRole{MemberRoleViewer, MemberRoleEditor, MemberRoleAdmin}
}

func (r MemberRole) Valid() bool {
	_, found := memberRoleRanks[r]
	return found
}

// Rank returns the position of the role in the privilege order.
func (r MemberRole) Rank() (int, error) {
	rank, found := memberRoleRanks[r]
	if !found {
		return 0, fmt.Errorf("%w: unknown member role '%s'", ErrInvalidArgument, r)
	}
	return rank, nil
}

// AtLeast reports whether r grants at least the privilege of required.
func (r MemberRole) AtLeast(required MemberRole) (bool, error) {
	requiredRank, err := required.Rank()
	if err != nil {
		return false, err
	}
	rank, err := r.Rank()
	if err != nil {
		return false, err
	}
	return rank >= requiredRank, nil
}
