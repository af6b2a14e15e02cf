package scope

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rbac/permission"
	"github.com/goliatone/go-rbac/pkg/types"
)

// PermissionPolicy authorizes guard checks by evaluating the policy action
// (itself a module:action permission string) against the actor's effective
// permission set. Plug it into a guard together with an AuthorityResolver;
// when the check arrives without a resolved authority the policy falls back
// to its own resolver.
type PermissionPolicy struct {
	resolver types.AuthorityResolver
}

// NewPermissionPolicy builds the evaluator-backed authorization policy.
func NewPermissionPolicy(resolver types.AuthorityResolver) *PermissionPolicy {
	return &PermissionPolicy{resolver: resolver}
}

var _ types.AuthorizationPolicy = (*PermissionPolicy)(nil)

// Authorize implements types.AuthorizationPolicy.
func (p *PermissionPolicy) Authorize(ctx context.Context, check types.PolicyCheck) error {
	authority := check.Authority
	if authority.IsZero() && p.resolver != nil {
		resolved, err := p.resolver.ResolveAuthority(ctx, check.Actor, check.Scope)
		if err != nil {
			return err
		}
		authority = resolved
	}
	if permission.AuthorityHas(authority, string(check.Action)) {
		return nil
	}
	return goerrors.New(
		fmt.Sprintf("go-rbac: actor %s not authorized for %s", check.Actor.ID, check.Action),
		goerrors.CategoryAuthz,
	).
		WithCode(goerrors.CodeForbidden).
		WithTextCode("SCOPE_FORBIDDEN").
		WithMetadata(map[string]any{
			"action":    string(check.Action),
			"tenant_id": check.Scope.TenantID.String(),
			"org_id":    check.Scope.OrgID.String(),
		})
}
