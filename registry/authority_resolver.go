package registry

import (
	"context"
	"errors"

	"github.com/goliatone/go-rbac/pkg/types"
)

// AuthorityResolver resolves an actor's effective authority from stored
// memberships. Predefined memberships map to the role's built-in permission
// table; custom memberships load the role definition and use its permission
// list verbatim. Users without a membership resolve to the zero authority.
type AuthorityResolver struct {
	registry types.RoleRegistry
}

// NewAuthorityResolver builds a membership-backed authority resolver.
func NewAuthorityResolver(registry types.RoleRegistry) *AuthorityResolver {
	return &AuthorityResolver{registry: registry}
}

var _ types.AuthorityResolver = (*AuthorityResolver)(nil)

// ResolveAuthority implements types.AuthorityResolver.
func (r *AuthorityResolver) ResolveAuthority(ctx context.Context, actor types.ActorRef, scope types.ScopeFilter) (types.Authority, error) {
	if r.registry == nil {
		return types.Authority{}, types.ErrMissingRoleRegistry
	}
	membership, err := r.registry.GetMembership(ctx, actor.ID, scope)
	if err != nil {
		if errors.Is(err, types.ErrMembershipNotFound) {
			return types.Authority{}, nil
		}
		return types.Authority{}, err
	}
	if membership.HasCustomRole() {
		role, err := r.registry.GetRole(ctx, membership.CustomRoleID, scope)
		if err != nil {
			return types.Authority{}, err
		}
		return types.CustomAuthority(role.Permissions), nil
	}
	if membership.Role.Valid() {
		return types.PredefinedAuthority(membership.Role), nil
	}
	return types.Authority{}, nil
}
