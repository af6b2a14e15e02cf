package permission

import "github.com/goliatone/go-rbac/pkg/types"

// assignmentLevel is the minimum hierarchy level allowed to change another
// principal's role assignment at all.
const assignmentLevel = 3

// CanAssignRole reports whether a predefined role may assign the target role
// to someone else. Assignment authority is distinct from permission
// granting:
//
//   - the owner may assign anything except another owner (no peer owners)
//   - super admins may assign roles below department manager rank
//   - department managers may assign employees and below
//   - nobody else assigns roles
func CanAssignRole(actor, target types.Role) bool {
	if !target.Valid() || HierarchyLevel(actor) < assignmentLevel {
		return false
	}
	switch actor {
	case types.RoleOrganizationOwner:
		return target != types.RoleOrganizationOwner
	case types.RoleSuperAdmin:
		return HierarchyLevel(target) < 4
	case types.RoleDepartmentManager:
		return HierarchyLevel(target) <= 2
	default:
		return false
	}
}

// AssignableRoles lists every predefined role the actor may assign, in
// descending authority order.
func AssignableRoles(actor types.Role) []types.Role {
	var out []types.Role
	for _, target := range types.Roles() {
		if CanAssignRole(actor, target) {
			out = append(out, target)
		}
	}
	return out
}

// CanAssignRoleWithPermissions decides assignment authority for custom role
// holders: assignment requires organization:admin or organization:members in
// the effective set, and when present the holder may assign any predefined
// role. Custom authorities carry no hierarchy level, so no level bound
// applies on this branch; the asymmetry with the predefined rules is
// intentional.
func CanAssignRoleWithPermissions(perms []string, target types.Role) bool {
	if !target.Valid() {
		return false
	}
	return HasAny(perms,
		Join(ModuleOrganization, ActionAdmin),
		Join(ModuleOrganization, ActionMembers),
	)
}

// CanAssign resolves assignment authority for either authority kind.
func CanAssign(a types.Authority, target types.Role) bool {
	switch a.Kind {
	case types.AuthorityPredefined:
		return CanAssignRole(a.Role, target)
	case types.AuthorityCustom:
		return CanAssignRoleWithPermissions(a.Permissions, target)
	default:
		return false
	}
}

// CanManageMemberships reports whether the authority may create or clear
// user-organization assignments, independent of the target role.
func CanManageMemberships(a types.Authority) bool {
	switch a.Kind {
	case types.AuthorityPredefined:
		return HierarchyLevel(a.Role) >= assignmentLevel &&
			(a.Role == types.RoleOrganizationOwner ||
				a.Role == types.RoleSuperAdmin ||
				a.Role == types.RoleDepartmentManager)
	case types.AuthorityCustom:
		return HasAny(a.Permissions,
			Join(ModuleOrganization, ActionAdmin),
			Join(ModuleOrganization, ActionMembers),
		)
	default:
		return false
	}
}

// CanCreateCustomRoles reports whether a predefined role may compose custom
// roles: super admins and owners only.
func CanCreateCustomRoles(role types.Role) bool {
	return HierarchyLevel(role) >= customRoleLevel
}

// AuthorityCanCreateCustomRoles extends CanCreateCustomRoles over the
// authority union. Custom authorities never qualify; they have no hierarchy
// level to meet the bar with.
func AuthorityCanCreateCustomRoles(a types.Authority) bool {
	return a.IsPredefined() && CanCreateCustomRoles(a.Role)
}
