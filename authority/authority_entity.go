package authority

import (
	"strings"
)

const SystemAdminPermission = "system:admin"

// Permissions are the global permissions of a session. Project scoped privileges are never
// expressed here, they are resolved against the loaded project aggregate.
type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) IsSystemAdmin() bool {
	return c.HasRole(SystemAdminPermission)
}
