package permission

import "github.com/goliatone/go-rbac/pkg/types"

// Has reports whether the effective permission set satisfies the requested
// permission. The check is exact match first, then module-scoped escalating
// inference: {module}:admin implies every action in the module, and
// {module}:write implies {module}:read. Inference never de-escalates and
// never crosses modules. Flat literals (no module:action shape) only ever
// match exactly.
func Has(perms []string, requested string) bool {
	if contains(perms, requested) {
		return true
	}
	module, action, ok := Split(requested)
	if !ok {
		return false
	}
	if contains(perms, Join(module, ActionAdmin)) {
		return true
	}
	if action == ActionRead && contains(perms, Join(module, ActionWrite)) {
		return true
	}
	return false
}

// HasAny reports whether at least one requested permission is satisfied.
func HasAny(perms []string, requested ...string) bool {
	for _, perm := range requested {
		if Has(perms, perm) {
			return true
		}
	}
	return false
}

// HasAll reports whether every requested permission is satisfied. An empty
// request is trivially satisfied.
func HasAll(perms []string, requested ...string) bool {
	for _, perm := range requested {
		if !Has(perms, perm) {
			return false
		}
	}
	return true
}

// RoleHas evaluates a requested permission against a predefined role's
// static table.
func RoleHas(role types.Role, requested string) bool {
	return Has(rolePermissions[role], requested)
}

// RoleHasAny mirrors HasAny for predefined roles.
func RoleHasAny(role types.Role, requested ...string) bool {
	return HasAny(rolePermissions[role], requested...)
}

// RoleHasAll mirrors HasAll for predefined roles.
func RoleHasAll(role types.Role, requested ...string) bool {
	return HasAll(rolePermissions[role], requested...)
}

// EffectivePermissions resolves an authority to its flattened permission
// list. Predefined authorities read the static table, custom authorities
// return their explicit set, and the zero authority resolves to no
// permissions. The resolution is total; a principal with no authority simply
// has nothing.
func EffectivePermissions(a types.Authority) []string {
	switch a.Kind {
	case types.AuthorityPredefined:
		return RolePermissions(a.Role)
	case types.AuthorityCustom:
		out := make([]string, len(a.Permissions))
		copy(out, a.Permissions)
		return out
	default:
		return nil
	}
}

// AuthorityHas evaluates a requested permission against an authority's
// effective set.
func AuthorityHas(a types.Authority, requested string) bool {
	return Has(EffectivePermissions(a), requested)
}

// ModuleAccessible reports whether the permission set carries any permission
// scoped to the module, regardless of action level.
func ModuleAccessible(perms []string, module string) bool {
	for _, perm := range perms {
		m, _, ok := Split(perm)
		if ok && m == module {
			return true
		}
	}
	return false
}

// CanAccessModule reports whether a predefined role can see a module at all.
func CanAccessModule(role types.Role, module string) bool {
	return ModuleAccessible(rolePermissions[role], module)
}
