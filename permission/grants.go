package permission

import (
	"fmt"

	"github.com/goliatone/go-rbac/pkg/types"
)

// Reasons attached to ungrantable permissions during custom role validation.
const (
	ReasonBillingRestricted = "billing-restricted"
	ReasonAdminRestricted   = "admin-restricted"
	ReasonNotHeld           = "not-held"
	ReasonMissingRead       = "missing-read"
)

// adminGrantLevel is the minimum hierarchy level allowed to delegate
// :admin-suffixed permissions.
const adminGrantLevel = 4

// customRoleLevel is the minimum hierarchy level allowed to create custom
// roles. Stricter than assignment authority since custom roles can encode
// arbitrary permission combinations.
const customRoleLevel = 5

// Grantable returns the permissions a predefined role may bestow on a custom
// role or another principal. Granting is distinct from and stricter than
// holding:
//
//   - the organization owner may grant everything it holds, billing included
//   - super admins may grant everything they hold except billing permissions
//   - every other role may grant what it holds, minus billing and minus
//     :admin-suffixed permissions below hierarchy level 4
func Grantable(role types.Role) []string {
	held := rolePermissions[role]
	switch role {
	case types.RoleOrganizationOwner:
		return RolePermissions(role)
	case types.RoleSuperAdmin:
		out := make([]string, 0, len(held))
		for _, perm := range held {
			if billingRestricted(perm) {
				continue
			}
			out = append(out, perm)
		}
		return out
	default:
		level := HierarchyLevel(role)
		out := make([]string, 0, len(held))
		for _, perm := range held {
			if billingRestricted(perm) {
				continue
			}
			if _, action, ok := Split(perm); ok && action == ActionAdmin && level < adminGrantLevel {
				continue
			}
			out = append(out, perm)
		}
		return out
	}
}

// CanGrant reports whether a predefined role may bestow the permission on
// someone else. Beyond the grantable set, module admins at hierarchy level 4
// or above may grant any non-admin action in their module, and write holders
// may always grant the matching read. Billing permissions never travel
// through those escalation paths; only the owner's grantable set carries
// them.
func CanGrant(role types.Role, perm string) bool {
	if contains(Grantable(role), perm) {
		return true
	}
	if billingRestricted(perm) {
		return false
	}
	module, action, ok := Split(perm)
	if !ok {
		return false
	}
	held := rolePermissions[role]
	if action != ActionAdmin && HierarchyLevel(role) >= adminGrantLevel && contains(held, Join(module, ActionAdmin)) {
		return true
	}
	if action == ActionRead && contains(held, Join(module, ActionWrite)) {
		return true
	}
	return false
}

// Issue describes one permission a validation request could not grant.
type Issue struct {
	Permission string
	Reason     string
}

// ValidationResult collects the outcome of validating a requested custom
// role permission set. It is a value, never an error: callers decide how to
// surface the field-level messages.
type ValidationResult struct {
	Valid       bool
	Errors      []string
	Ungrantable []Issue
}

// ValidateCustomRolePermissions checks every requested permission against
// the granting role's delegation authority and applies the blanket rule that
// a non-empty custom role must include at least one :read permission. An
// empty request is valid.
func ValidateCustomRolePermissions(role types.Role, requested []string) ValidationResult {
	result := ValidationResult{Valid: true}
	hasRead := false
	for _, perm := range requested {
		if _, action, ok := Split(perm); ok && action == ActionRead {
			hasRead = true
		}
		if CanGrant(role, perm) {
			continue
		}
		issue := Issue{Permission: perm, Reason: grantDenialReason(role, perm)}
		result.Ungrantable = append(result.Ungrantable, issue)
		result.Errors = append(result.Errors, grantDenialMessage(issue))
	}
	if len(requested) > 0 && !hasRead {
		result.Errors = append(result.Errors, "custom roles must include at least one read permission")
		result.Ungrantable = append(result.Ungrantable, Issue{Reason: ReasonMissingRead})
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func grantDenialReason(role types.Role, perm string) string {
	if billingRestricted(perm) {
		return ReasonBillingRestricted
	}
	if _, action, ok := Split(perm); ok && action == ActionAdmin && HierarchyLevel(role) < adminGrantLevel {
		return ReasonAdminRestricted
	}
	return ReasonNotHeld
}

func grantDenialMessage(issue Issue) string {
	switch issue.Reason {
	case ReasonBillingRestricted:
		return fmt.Sprintf("%s: billing permissions can only be granted by the organization owner", issue.Permission)
	case ReasonAdminRestricted:
		return fmt.Sprintf("%s: admin permissions require a role of department manager rank or above", issue.Permission)
	default:
		return fmt.Sprintf("%s: permission is not held by the granting role", issue.Permission)
	}
}
