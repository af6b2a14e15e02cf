package permission

import "strings"

// Separator splits a permission string into module and action.
const Separator = ":"

// Actions form a small closed set per module. read < write < admin; billing
// and members are organization-scoped specials outside the hierarchy.
const (
	ActionRead    = "read"
	ActionWrite   = "write"
	ActionAdmin   = "admin"
	ActionBilling = "billing"
	ActionMembers = "members"
)

// Modules permissions are scoped to.
const (
	ModuleCRM           = "crm"
	ModuleFinance       = "finance"
	ModuleHR            = "hr"
	ModuleProjects      = "projects"
	ModuleCollaboration = "collaboration"
	ModuleMarketing     = "marketing"
	ModuleSettings      = "settings"
	ModuleOrganization  = "organization"
	ModuleBilling       = "billing"
)

// Join builds the canonical module:action permission string.
func Join(module, action string) string {
	return module + Separator + action
}

// Split parses a permission into its module and action parts. A string
// without a separator, or with an empty module or action, does not match the
// module:action shape; it is treated as a flat literal and the hierarchy
// inference rules never apply to it.
func Split(perm string) (module, action string, ok bool) {
	module, action, found := strings.Cut(perm, Separator)
	if !found || module == "" || action == "" {
		return "", "", false
	}
	return module, action, true
}

// Normalize trims whitespace and lowercases a permission so comparisons stay
// consistent across transports.
func Normalize(perm string) string {
	return strings.ToLower(strings.TrimSpace(perm))
}

// billingRestricted reports whether the permission is grantable only by the
// organization owner.
func billingRestricted(perm string) bool {
	if perm == Join(ModuleOrganization, ActionBilling) {
		return true
	}
	module, _, ok := Split(perm)
	return ok && module == ModuleBilling
}

func contains(perms []string, perm string) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
