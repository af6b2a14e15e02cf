package types

import "strings"

// Role enumerates the predefined organization roles. The set is closed; the
// permission tables and hierarchy levels for each role live in the permission
// package as process-wide static configuration.
type Role string

const (
	// RoleOrganizationOwner has unrestricted authority, including billing.
	RoleOrganizationOwner Role = "organization_owner"
	// RoleSuperAdmin administers every module except billing grants.
	RoleSuperAdmin Role = "super_admin"
	// RoleDepartmentManager coordinates across departments.
	RoleDepartmentManager Role = "department_manager"
	// RoleFinanceManager administers the finance module.
	RoleFinanceManager Role = "finance_manager"
	// RoleHRManager administers the hr module.
	RoleHRManager Role = "hr_manager"
	// RoleSalesManager administers the crm module.
	RoleSalesManager Role = "sales_manager"
	// RoleMarketingManager administers the marketing module.
	RoleMarketingManager Role = "marketing_manager"
	// RoleEmployee is the default member role.
	RoleEmployee Role = "employee"
	// RoleContractor is limited to project collaboration.
	RoleContractor Role = "contractor"
	// RoleViewer has read-only access.
	RoleViewer Role = "viewer"
)

// Roles lists every predefined role in descending authority order.
func Roles() []Role {
	return []Role{
		RoleOrganizationOwner,
		RoleSuperAdmin,
		RoleDepartmentManager,
		RoleFinanceManager,
		RoleHRManager,
		RoleSalesManager,
		RoleMarketingManager,
		RoleEmployee,
		RoleContractor,
		RoleViewer,
	}
}

// ParseRole normalizes the raw value and reports whether it names a
// predefined role.
func ParseRole(raw string) (Role, bool) {
	role := Role(normalizeRole(raw))
	return role, role.Valid()
}

// Valid reports whether the role is one of the predefined set.
func (r Role) Valid() bool {
	switch r {
	case RoleOrganizationOwner, RoleSuperAdmin, RoleDepartmentManager,
		RoleFinanceManager, RoleHRManager, RoleSalesManager,
		RoleMarketingManager, RoleEmployee, RoleContractor, RoleViewer:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// RoleName normalizes the actor role for comparisons.
func (a ActorRef) RoleName() string {
	return normalizeRole(a.Type)
}

// Role returns the predefined role named by the actor type, if any.
func (a ActorRef) Role() (Role, bool) {
	return ParseRole(a.Type)
}

// IsRole reports whether the actor matches the provided role.
func (a ActorRef) IsRole(role Role) bool {
	return a.RoleName() == string(role)
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
