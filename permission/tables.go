package permission

import "github.com/goliatone/go-rbac/pkg/types"

// rolePermissions is the static role→permission table. It is process-wide
// configuration: loaded once, never mutated at runtime. RolePermissions
// returns defensive copies so callers cannot reach the backing slices.
var rolePermissions = map[types.Role][]string{
	types.RoleOrganizationOwner: {
		Join(ModuleCRM, ActionAdmin),
		Join(ModuleFinance, ActionAdmin),
		Join(ModuleHR, ActionAdmin),
		Join(ModuleProjects, ActionAdmin),
		Join(ModuleCollaboration, ActionAdmin),
		Join(ModuleMarketing, ActionAdmin),
		Join(ModuleSettings, ActionAdmin),
		Join(ModuleOrganization, ActionAdmin),
		Join(ModuleOrganization, ActionBilling),
		Join(ModuleOrganization, ActionMembers),
		Join(ModuleBilling, ActionAdmin),
		Join(ModuleBilling, ActionWrite),
		Join(ModuleBilling, ActionRead),
	},
	types.RoleSuperAdmin: {
		Join(ModuleCRM, ActionAdmin),
		Join(ModuleFinance, ActionAdmin),
		Join(ModuleHR, ActionAdmin),
		Join(ModuleProjects, ActionAdmin),
		Join(ModuleCollaboration, ActionAdmin),
		Join(ModuleMarketing, ActionAdmin),
		Join(ModuleSettings, ActionAdmin),
		Join(ModuleOrganization, ActionAdmin),
		Join(ModuleOrganization, ActionMembers),
		Join(ModuleBilling, ActionRead),
	},
	types.RoleDepartmentManager: {
		Join(ModuleCRM, ActionWrite),
		Join(ModuleFinance, ActionWrite),
		Join(ModuleHR, ActionWrite),
		Join(ModuleProjects, ActionAdmin),
		Join(ModuleCollaboration, ActionAdmin),
		Join(ModuleMarketing, ActionWrite),
		Join(ModuleSettings, ActionRead),
		Join(ModuleOrganization, ActionRead),
		Join(ModuleOrganization, ActionMembers),
	},
	types.RoleFinanceManager: {
		Join(ModuleFinance, ActionAdmin),
		Join(ModuleCRM, ActionRead),
		Join(ModuleHR, ActionRead),
		Join(ModuleProjects, ActionRead),
		Join(ModuleCollaboration, ActionWrite),
		Join(ModuleOrganization, ActionRead),
	},
	types.RoleHRManager: {
		Join(ModuleHR, ActionAdmin),
		Join(ModuleFinance, ActionRead),
		Join(ModuleProjects, ActionRead),
		Join(ModuleCollaboration, ActionWrite),
		Join(ModuleOrganization, ActionRead),
		Join(ModuleOrganization, ActionMembers),
	},
	types.RoleSalesManager: {
		Join(ModuleCRM, ActionAdmin),
		Join(ModuleMarketing, ActionWrite),
		Join(ModuleFinance, ActionRead),
		Join(ModuleProjects, ActionRead),
		Join(ModuleCollaboration, ActionWrite),
		Join(ModuleOrganization, ActionRead),
	},
	types.RoleMarketingManager: {
		Join(ModuleMarketing, ActionAdmin),
		Join(ModuleCRM, ActionWrite),
		Join(ModuleProjects, ActionRead),
		Join(ModuleCollaboration, ActionWrite),
		Join(ModuleOrganization, ActionRead),
	},
	types.RoleEmployee: {
		Join(ModuleCRM, ActionRead),
		Join(ModuleFinance, ActionRead),
		Join(ModuleHR, ActionRead),
		Join(ModuleProjects, ActionWrite),
		Join(ModuleCollaboration, ActionWrite),
		Join(ModuleOrganization, ActionRead),
	},
	types.RoleContractor: {
		Join(ModuleProjects, ActionWrite),
		Join(ModuleCollaboration, ActionRead),
	},
	types.RoleViewer: {
		Join(ModuleCRM, ActionRead),
		Join(ModuleFinance, ActionRead),
		Join(ModuleProjects, ActionRead),
		Join(ModuleCollaboration, ActionRead),
		Join(ModuleOrganization, ActionRead),
	},
}

// hierarchyLevels ranks roles 1-6 for assignment and grant-delegation
// authority. Levels are assigned by design intent, frozen at definition
// time, and are NOT derivable from the permission sets above; keep both
// tables in lockstep when editing either.
var hierarchyLevels = map[types.Role]int{
	types.RoleOrganizationOwner: 6,
	types.RoleSuperAdmin:        5,
	types.RoleDepartmentManager: 4,
	types.RoleFinanceManager:    3,
	types.RoleHRManager:         3,
	types.RoleSalesManager:      3,
	types.RoleMarketingManager:  3,
	types.RoleEmployee:          2,
	types.RoleContractor:        1,
	types.RoleViewer:            1,
}

// RolePermissions returns the static permission set granted to a predefined
// role. Unknown roles yield an empty set.
func RolePermissions(role types.Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HierarchyLevel returns the numeric rank (1-6) of a predefined role. Unknown
// roles rank 0, below every real role.
func HierarchyLevel(role types.Role) int {
	return hierarchyLevels[role]
}

// Modules lists every module the predefined tables reference.
func Modules() []string {
	return []string{
		ModuleCRM,
		ModuleFinance,
		ModuleHR,
		ModuleProjects,
		ModuleCollaboration,
		ModuleMarketing,
		ModuleSettings,
		ModuleOrganization,
		ModuleBilling,
	}
}
