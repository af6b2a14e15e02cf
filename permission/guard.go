package permission

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rbac/pkg/types"
)

const textCodePermissionDenied = "PERMISSION_DENIED"

// Require returns nil when the authority satisfies the permission and a
// categorized forbidden error naming the denied permission otherwise. Query
// functions never fail; this guard exists for call sites at the boundary of
// privileged operations that want an error to propagate.
func Require(a types.Authority, perm string) error {
	if AuthorityHas(a, perm) {
		return nil
	}
	return goerrors.New(
		fmt.Sprintf("go-rbac: permission %q denied", perm),
		goerrors.CategoryAuthz,
	).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(textCodePermissionDenied).
		WithMetadata(map[string]any{"permission": perm})
}

// RequireAny returns nil when the authority satisfies at least one of the
// requested permissions, and a forbidden error listing all of them
// otherwise.
func RequireAny(a types.Authority, perms ...string) error {
	if len(perms) == 0 {
		return nil
	}
	effective := EffectivePermissions(a)
	for _, perm := range perms {
		if Has(effective, perm) {
			return nil
		}
	}
	return goerrors.New(
		fmt.Sprintf("go-rbac: none of the required permissions granted: %s", strings.Join(perms, ", ")),
		goerrors.CategoryAuthz,
	).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(textCodePermissionDenied).
		WithMetadata(map[string]any{"permissions": perms})
}

// RequireRole is a convenience wrapper over Require for predefined roles.
func RequireRole(role types.Role, perm string) error {
	return Require(types.PredefinedAuthority(role), perm)
}
