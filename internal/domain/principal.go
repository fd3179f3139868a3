package domain

// Role enumerates the permission tiers an account can hold.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Permission names a single allowed action.
type Permission string

const (
	PermissionRead   Permission = "resource.read"
	PermissionWrite  Permission = "resource.write"
	PermissionManage Permission = "resource.manage"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin:  {PermissionRead, PermissionWrite, PermissionManage},
	RoleEditor: {PermissionRead, PermissionWrite},
	RoleViewer: {PermissionRead},
}

// Principal is the authenticated identity resolved from a credential.
type Principal struct {
	ID   string
	Role Role
}

// Can reports whether the principal's role grants the permission.
func (p *Principal) Can(perm Permission) bool {
	if p == nil {
		return false
	}
	for _, granted := range rolePermissions[p.Role] {
		if granted == perm {
			return true
		}
	}
	return false
}

// ValidRole reports whether the role is one of the known tiers.
func ValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}
